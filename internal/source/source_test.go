package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPlain(t *testing.T) {
	path := writeFile(t, "italian.PGN", "1. e4 e5\n2. Nf3 Nc6\n")
	text, err := ReadText(path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "1. e4 e5\n2. Nf3 Nc6\n" {
		t.Errorf("text = %q", text)
	}
}

func TestReadMarkdown(t *testing.T) {
	md := "# Italian Game\n\nThe **classical** line:\n\n```\n1. e4 e5 2. Nf3 Nc6\n3. Bc4\n```\n\n- quiet *development*\n- central control\n\n3. Bc4 - the bishop eyes f7\n4. c3 - preparing d4\n"
	text, err := ReadText(writeFile(t, "notes.md", md))
	if err != nil {
		t.Fatal(err)
	}
	want := "Italian Game\nThe classical line:\n1. e4 e5 2. Nf3 Nc6\n3. Bc4\nquiet development\ncentral control\n3. Bc4 - the bishop eyes f7\n4. c3 - preparing d4\n"
	if text != want {
		t.Errorf("text = %q\nwant  %q", text, want)
	}
}

func TestReadHTML(t *testing.T) {
	page := `<html><head><title>x</title><style>p{}</style></head><body>
<nav>menu</nav>
<h1>Sicilian   Defence</h1>
<p>Black fights for <b>d4</b>.</p>
<pre>1. e4 c5
2. Nf3 d6</pre>
<ul><li><p>Najdorf</p></li><li>Dragon</li></ul>
<script>var x = 1;</script>
</body></html>`
	text, err := ReadText(writeFile(t, "page.html", page))
	if err != nil {
		t.Fatal(err)
	}
	want := "Sicilian Defence\nBlack fights for d4.\n1. e4 c5\n2. Nf3 d6\nNajdorf\nDragon\n"
	if text != want {
		t.Errorf("text = %q\nwant  %q", text, want)
	}
}

func TestReadDOCX(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("London System")
	doc.AddParagraph()
	doc.AddParagraph().AddText("1. d4 d5 2. Bf4")

	path := filepath.Join(t.TempDir(), "london.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	text, err := ReadText(path)
	if err != nil {
		t.Fatal(err)
	}
	if text != "London System\n1. d4 d5 2. Bf4\n" {
		t.Errorf("text = %q", text)
	}
}

func TestOpenRejectsUnknownExtension(t *testing.T) {
	if _, err := Open("game.xlsx"); err == nil {
		t.Error("expected error for .xlsx")
	}
	for _, name := range []string{"a.txt", "b.PGN", "c.md", "d.htm", "e.pdf", "f.docx"} {
		if !Supported(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	if Supported("g.png") {
		t.Error("images are not theory files")
	}
}

func TestPDFMissingFile(t *testing.T) {
	_, err := ReadText(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil || !strings.Contains(err.Error(), "extract pdf text") {
		t.Errorf("expected extraction error, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	text, err := Decode(strings.NewReader("# Title\n\n1. e4"), "md")
	if err != nil || text != "Title\n1. e4\n" {
		t.Errorf("Decode(md) = %q, %v", text, err)
	}
	text, err = Decode(strings.NewReader("1. d4"), "")
	if err != nil || text != "1. d4" {
		t.Errorf("Decode(plain) = %q, %v", text, err)
	}
	if _, err := Decode(strings.NewReader("x"), ".exe"); err == nil {
		t.Error("expected error for .exe")
	}
}

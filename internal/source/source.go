// Package source turns theory files of several document formats into the
// plain text the notation parser reads. Line structure is preserved where
// the format has one, because the parser is line oriented.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Source yields the text content of a theory file.
type Source interface {
	Text() (string, error)
}

// Loader reads one document format.
type Loader func(r io.Reader, path string) (string, error)

var loaders = map[string]Loader{
	".txt":      readPlain,
	".pgn":      readPlain,
	".md":       readMarkdown,
	".markdown": readMarkdown,
	".html":     readHTML,
	".htm":      readHTML,
	".docx":     readDOCX,
}

// FileSource reads a theory file from disk, choosing the loader by extension.
type FileSource struct {
	path   string
	loader Loader
}

// Open returns a Source for path. PDF files are handled separately because
// both PDF backends need a path rather than a stream.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return &PDFSource{path: path}, nil
	}
	loader, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("неподдерживаемый формат файла: %q", ext)
	}
	return &FileSource{path: path, loader: loader}, nil
}

// Supported reports whether Open accepts the file extension of path.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := loaders[ext]
	return ok || ext == ".pdf"
}

func (s *FileSource) Text() (string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := s.loader(f, s.path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(s.path), err)
	}
	return text, nil
}

// ReadText is a shortcut for Open followed by Text.
func ReadText(path string) (string, error) {
	src, err := Open(path)
	if err != nil {
		return "", err
	}
	return src.Text()
}

// Decode extracts text from r as if it were a file with extension ext.
// PDF data is spooled to a temporary file first.
func Decode(r io.Reader, ext string) (string, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == "" {
		ext = ".txt"
	}
	if ext == ".pdf" {
		return decodePDF(r)
	}
	loader, ok := loaders[ext]
	if !ok {
		return "", fmt.Errorf("неподдерживаемый формат файла: %q", ext)
	}
	return loader(r, "")
}

func decodePDF(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "chess2video-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return (&PDFSource{path: tmp.Name()}).Text()
}

func readPlain(r io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// joinLines drops blank lines and trims each remaining one.
func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

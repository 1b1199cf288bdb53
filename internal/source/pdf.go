package source

import (
	"fmt"
	"log"
	"strings"

	"github.com/gen2brain/go-fitz"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFSource extracts text with MuPDF and falls back to a pure Go reader
// when MuPDF cannot open the file.
type PDFSource struct {
	path string
}

func (s *PDFSource) Text() (string, error) {
	text, err := fitzText(s.path)
	if err == nil {
		return text, nil
	}
	log.Printf("[!] MuPDF не смог прочитать %s (%v), пробуем резервный разбор", s.path, err)

	text, ferr := plainPDFText(s.path)
	if ferr != nil {
		return "", fmt.Errorf("extract pdf text: %w", ferr)
	}
	return text, nil
}

func fitzText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func plainPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

package util

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// DocumentExtensions are the upload types accepted for verification documents.
var DocumentExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// PDFPageCount opens a PDF and returns its number of pages.
func PDFPageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return 0, fmt.Errorf("PDF %s has no pages", filepath.Base(path))
	}
	return pages, nil
}

// PageCount returns the page count of an uploaded document. Images count as
// one page.
func PageCount(path string) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return PDFPageCount(path)
	case DocumentExtensions[ext]:
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported document type %q", ext)
	}
}

// SafeFilename strips directories and spaces from a client supplied name.
func SafeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "document"
	}
	return base
}

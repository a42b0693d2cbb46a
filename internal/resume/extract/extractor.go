// Package extract turns résumé files into plain text. PDF and HTML files are
// parsed; anything else is read as text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// Extractor returns the text of the résumé at path. An empty string with a
// nil error means the file had nothing usable.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// FileExtractor reads résumés from the local filesystem.
type FileExtractor struct {
	// MaxBytes caps how much of a plain-text or HTML file is read. Zero means
	// DefaultMaxBytes.
	MaxBytes int64
}

const DefaultMaxBytes = 8 << 20

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{MaxBytes: DefaultMaxBytes}
}

// Extract dispatches on the file extension. A missing file yields "" so the
// caller can exclude the applicant without failing the batch.
func (e *FileExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".html", ".htm":
		raw, err := e.readFile(path)
		if err != nil {
			return "", err
		}
		return extractHTML(raw)
	default:
		raw, err := e.readFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
}

func (e *FileExtractor) readFile(path string) ([]byte, error) {
	limit := e.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

func extractPDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parsing pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text %s: %w", path, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// extractHTML returns the visible body text, one block per line.
func extractHTML(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		for _, line := range strings.Split(s.Text(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				parts = append(parts, line)
			}
		}
	})
	return strings.Join(parts, "\n"), nil
}

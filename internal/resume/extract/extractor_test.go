package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "a.txt", "  I know Python and SQL\n")

	text, err := NewFileExtractor().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "I know Python and SQL", text)
}

func TestExtractHTMLDropsMarkupAndScripts(t *testing.T) {
	path := writeFile(t, "b.html", `<html><head><style>p{}</style></head>
<body><h1>Jane Doe</h1>
<script>var x = 1;</script>
<p>Go and Kubernetes</p></body></html>`)

	text, err := NewFileExtractor().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Go and Kubernetes")
	assert.NotContains(t, text, "var x")
}

func TestExtractMissingFileIsEmpty(t *testing.T) {
	text, err := NewFileExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractEmptyPath(t *testing.T) {
	text, err := NewFileExtractor().Extract(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractCorruptPDFErrors(t *testing.T) {
	path := writeFile(t, "c.pdf", "not really a pdf")

	_, err := NewFileExtractor().Extract(context.Background(), path)
	assert.Error(t, err)
}

func TestExtractRespectsMaxBytes(t *testing.T) {
	path := writeFile(t, "d.txt", "abcdefghij")

	text, err := (&FileExtractor{MaxBytes: 4}).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "abcd", text)
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileExtractor().Extract(ctx, "whatever.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

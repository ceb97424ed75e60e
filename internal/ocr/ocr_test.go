package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/inquiry-intake/constants"
)

// stubRunner answers per command name and records invocations.
type stubRunner struct {
	outputs map[string]string
	errs    map[string]error
	// pages rendered by the pdftoppm stub
	renderPages int
	calls       []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	if err := s.errs[name]; err != nil {
		return nil, []byte(name + " failed"), err
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		for i := 1; i <= s.renderPages; i++ {
			if err := os.WriteFile(prefix+"-"+string(rune('0'+i))+".png", []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}
	return []byte(s.outputs[name]), nil, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestExtract_PDFTextLayer(t *testing.T) {
	r := &stubRunner{outputs: map[string]string{
		"pdftotext": "Page one\tline\n\fPage   two\n\f",
	}}
	e := NewExtractorWithRunner(Config{}, r, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "survey.pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Page one line\n\nPage two", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, []string{"pdftotext"}, r.calls)
}

func TestExtract_PDFFallsBackToOCR(t *testing.T) {
	r := &stubRunner{
		outputs:     map[string]string{"pdftotext": "  \f \f", "tesseract": "Scanned text"},
		renderPages: 2,
	}
	e := NewExtractorWithRunner(Config{}, r, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "scan.pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "Scanned text\nScanned text", res.Text)
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, r.calls)
}

func TestExtract_PDFToolFailure(t *testing.T) {
	r := &stubRunner{errs: map[string]error{"pdftotext": errors.New("exit status 1")}}
	e := NewExtractorWithRunner(Config{}, r, nil)

	_, err := e.Extract(context.Background(), writeFile(t, "broken.pdf", "garbage"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext")
}

func TestExtract_MaxPages(t *testing.T) {
	r := &stubRunner{outputs: map[string]string{"pdftotext": "a\fb\fc"}}
	e := NewExtractorWithRunner(Config{MaxPages: 2}, r, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "long.pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "a\nb", res.Text)
	require.Len(t, res.Warnings, 1)
}

func TestExtract_Image(t *testing.T) {
	r := &stubRunner{outputs: map[string]string{"tesseract": "Hull ID: ABC123\n-----\n"}}
	e := NewExtractorWithRunner(Config{TesseractLang: "eng"}, r, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "photo.JPG", "jpg"))
	require.NoError(t, err)
	assert.Equal(t, "Hull ID: ABC123", res.Text)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, "eng", res.Language)
}

func TestExtract_PlainAndHTML(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "notes.txt", "Owner:\r\nJane   Doe\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Owner:\nJane Doe", res.Text)
	assert.Equal(t, "plain", res.Method)

	res, err = e.Extract(context.Background(), writeFile(t, "page.html", "<p>Azimut <b>55</b></p><script>x()</script>"))
	require.NoError(t, err)
	assert.Equal(t, "Azimut 55", res.Text)
	assert.Equal(t, "html", res.Method)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)
	_, err := e.Extract(context.Background(), writeFile(t, "archive.zip", "PK"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}

func TestExtract_MissingFile(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a b\n\nc", Normalize("a\t\tb  \n\n\n\nc\n"))
}

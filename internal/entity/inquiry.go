package entity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Inquiry is one submission: free-form message text plus an optional attachment.
type Inquiry struct {
	Text     string    `json:"text"`
	Document *Document `json:"document,omitempty"`
}

// Document is an attachment handle. Either Path points at a file on disk,
// or Data holds the raw bytes and Name carries the original file name.
type Document struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
	Data []byte `json:"-"`
}

// DisplayName returns a human-friendly name for logs.
func (d *Document) DisplayName() string {
	if d == nil {
		return ""
	}
	if d.Name != "" {
		return d.Name
	}
	return filepath.Base(d.Path)
}

// Materialize returns a file path for the document. When the document only has
// in-memory bytes they are written to a temp file which cleanup removes.
func (d *Document) Materialize() (path string, cleanup func(), err error) {
	noop := func() {}
	if d == nil {
		return "", noop, fmt.Errorf("nil document")
	}
	if d.Path != "" {
		return d.Path, noop, nil
	}
	if len(d.Data) == 0 {
		return "", noop, fmt.Errorf("document %q has neither path nor data", d.Name)
	}

	tmpDir, err := os.MkdirTemp("", "intake-doc-*")
	if err != nil {
		return "", noop, err
	}
	cleanup = func() { _ = os.RemoveAll(tmpDir) }

	name := filepath.Base(strings.TrimSpace(d.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "attachment"
	}
	p := filepath.Join(tmpDir, name)
	if err := os.WriteFile(p, d.Data, 0o600); err != nil {
		cleanup()
		return "", noop, err
	}
	return p, cleanup, nil
}

package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/inquiry-intake/constants"
)

// attachmentExts is the lookup order for sibling attachments. Inquiry
// extensions are left out so a.txt and a.md never pair with each other.
var attachmentExts = []string{"pdf", "png", "jpg", "jpeg", "tif", "tiff", "html", "htm"}

// IsInquiryFile reports whether path has an inquiry message extension.
func IsInquiryFile(path string) bool {
	return constants.IsInquiryExt(filepath.Ext(path))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// FindAttachment returns the first sibling of path sharing its base name with
// an attachment extension, or "" when there is none.
func FindAttachment(path string) string {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range attachmentExts {
		for _, candidate := range []string{stem + "." + ext, stem + "." + strings.ToUpper(ext)} {
			if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
				return candidate
			}
		}
	}
	return ""
}

// OutputPath returns where the record for source is written.
func OutputPath(source, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + ".json"
	if outDir == "" {
		return filepath.Join(filepath.Dir(source), name)
	}
	return filepath.Join(outDir, name)
}

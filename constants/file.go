package constants

import "strings"

// Document formats understood by the text extractor.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TEXT  = "TEXT"
	HTML  = "HTML"
)

// AllowedExtensions holds the attachment extensions accepted for text extraction.
var AllowedExtensions = map[string]string{
	"pdf":  PDF,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"txt":  TEXT,
	"md":   TEXT,
	"htm":  HTML,
	"html": HTML,
}

// InquiryExtensions are the extensions treated as inquiry messages in an inbox.
var InquiryExtensions = map[string]struct{}{
	"txt": {},
	"md":  {},
	"eml": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns the document format for ext, or "" when unsupported.
func MapExtToFormat(ext string) string {
	return AllowedExtensions[NormalizeExt(ext)]
}

// IsInquiryExt reports whether ext names an inquiry message file.
func IsInquiryExt(ext string) bool {
	_, ok := InquiryExtensions[NormalizeExt(ext)]
	return ok
}

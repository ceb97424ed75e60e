package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pdfToText reads the text layer of every page, in order.
func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	raw := strings.TrimRight(string(out), "\f")
	// form feed separates pages
	pageTexts := strings.Split(raw, "\f")
	if e.cfg.MaxPages > 0 && len(pageTexts) > e.cfg.MaxPages {
		warnings = append(warnings, fmt.Sprintf("truncated to %d of %d pages", e.cfg.MaxPages, len(pageTexts)))
		pageTexts = pageTexts[:e.cfg.MaxPages]
	}
	return strings.Join(pageTexts, "\n"), len(pageTexts), warnings, nil
}

// pdfToOCR rasterizes each page and runs tesseract over it.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "intake-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	if b.Len() == 0 {
		return "", len(matches), warns, fmt.Errorf("ocr produced no text for %d pages", len(matches))
	}
	return b.String(), len(matches), warns, nil
}

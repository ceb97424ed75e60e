package textnorm

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DecodeCharset converts b from the named charset to UTF-8. An empty, UTF-8
// or unrecognised charset leaves the bytes as they are.
func DecodeCharset(b []byte, charset string) string {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8":
		return string(b)
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// CharsetReader has the signature of mime.WordDecoder.CharsetReader.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(strings.ToLower(strings.TrimSpace(charset)))
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

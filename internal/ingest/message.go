package ingest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/textnorm"
)

// LoadInquiry reads an inquiry file. Plain text and markdown are taken as is.
// An .eml message contributes its headers and text body, and its first
// attachment with a supported extension becomes the inquiry document.
func LoadInquiry(path string) (entity.Inquiry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return entity.Inquiry{}, err
	}
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "txt", "md":
		return entity.Inquiry{Text: string(raw)}, nil
	case "eml":
		return parseMessage(raw)
	default:
		return entity.Inquiry{}, fmt.Errorf("%w: unsupported inquiry file %q", common.ErrInvalidInput, filepath.Base(path))
	}
}

type messageParts struct {
	text       []string
	html       []string
	attachment *entity.Document
}

func parseMessage(raw []byte) (entity.Inquiry, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return entity.Inquiry{}, fmt.Errorf("%w: read message: %v", common.ErrInvalidInput, err)
	}

	var parts messageParts
	if err := collectParts(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, &parts); err != nil {
		return entity.Inquiry{}, err
	}

	body := strings.Join(parts.text, "\n")
	if strings.TrimSpace(body) == "" {
		body = strings.Join(parts.html, "\n")
	}

	var b strings.Builder
	for _, h := range []string{"From", "Subject"} {
		if v := decodeHeader(msg.Header.Get(h)); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", h, v)
		}
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(body))

	in := entity.Inquiry{Document: parts.attachment}
	// headers alone are not an inquiry
	if strings.TrimSpace(body) != "" {
		in.Text = strings.TrimSpace(b.String())
	}
	return in, nil
}

func collectParts(contentType, encoding string, r io.Reader, out *messageParts) error {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(r, params["boundary"])
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: read multipart: %v", common.ErrInvalidInput, err)
			}
			if name := part.FileName(); name != "" {
				readAttachment(part, name, out)
				continue
			}
			if err := collectParts(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part, out); err != nil {
				return err
			}
		}
	}

	content, err := io.ReadAll(decodeTransfer(r, encoding))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", common.ErrInvalidInput, err)
	}
	switch mediaType {
	case "text/plain":
		out.text = append(out.text, textnorm.DecodeCharset(content, params["charset"]))
	case "text/html":
		out.html = append(out.html, textnorm.HTMLToText(textnorm.DecodeCharset(content, params["charset"])))
	}
	return nil
}

func readAttachment(part *multipart.Part, name string, out *messageParts) {
	if out.attachment != nil || constants.MapExtToFormat(filepath.Ext(name)) == "" {
		return
	}
	data, err := io.ReadAll(decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding")))
	if err != nil || len(data) == 0 {
		return
	}
	out.attachment = &entity.Document{Name: filepath.Base(name), Data: data}
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := &mime.WordDecoder{CharsetReader: textnorm.CharsetReader}
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

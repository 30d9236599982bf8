package library

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // registers non-UTF-8 charset decoders
)

// extractEML parses an RFC 822 .eml file (spec §6: "handle Content-Type
// charset with fallback to utf-8 and then latin-1"), preferring an HTML
// body part over plain text, matching the Gmail poller's own preference
// (see gmail/message.go).
func extractEML(data []byte) (title, content string, err error) {
	entity, err := message.Read(bytes.NewReader(data))
	var unknownCharset message.UnknownCharsetError
	if errors.As(err, &unknownCharset) {
		// go-message/charset already installs latin-1/utf-8 fallbacks via
		// its registered decoders; a still-unknown charset degrades to the
		// raw bytes rather than failing the whole upload.
		err = nil
	}
	if err != nil || entity == nil {
		return "", "", fmt.Errorf("parse eml: %w", err)
	}

	if subject, decodeErr := decodeHeader(entity.Header.Get("Subject")); decodeErr == nil {
		title = subject
	}

	htmlBody, textBody := collectBodies(entity)
	if htmlBody != "" {
		return title, htmlBody, nil
	}
	return title, textBody, nil
}

func decodeHeader(raw string) (string, error) {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(raw)
	if err != nil {
		return raw, err
	}
	return decoded, nil
}

// collectBodies walks a (possibly multipart) message entity and returns the
// first HTML and first plain-text body parts it finds.
func collectBodies(entity *message.Entity) (htmlBody, textBody string) {
	mr := entity.MultipartReader()
	if mr == nil {
		body, _ := io.ReadAll(entity.Body)
		contentType, _, _ := entity.Header.ContentType()
		if strings.Contains(contentType, "html") {
			return string(body), ""
		}
		return "", string(body)
	}

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		contentType, _, _ := part.Header.ContentType()
		body, _ := io.ReadAll(part.Body)
		switch {
		case strings.Contains(contentType, "multipart"):
			h, t := collectBodies(part)
			if htmlBody == "" {
				htmlBody = h
			}
			if textBody == "" {
				textBody = t
			}
		case strings.Contains(contentType, "html") && htmlBody == "":
			htmlBody = string(body)
		case strings.Contains(contentType, "text") && textBody == "":
			textBody = string(body)
		}
	}
	return htmlBody, textBody
}

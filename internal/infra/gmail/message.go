package gmail

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // registers non-UTF-8 charset decoders
)

// parsedMessage is the subset of an RFC 822 message this poller cares
// about, extracted once per fetched UID.
type parsedMessage struct {
	Subject         string
	From            string
	FromName        string
	Date            time.Time
	ListID          string
	ListUnsubscribe string
	XMailer         string
	HTMLBody        string
	TextBody        string
}

// parseRFC822 parses a message's raw bytes (as returned by an IMAP BODY[]
// fetch) into its headers and preferred body.
func parseRFC822(raw []byte) (*parsedMessage, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	var unknownCharset message.UnknownCharsetError
	if errors.As(err, &unknownCharset) {
		err = nil
	}
	if err != nil || entity == nil {
		return nil, err
	}

	pm := &parsedMessage{
		Subject:         decodeHeader(entity.Header.Get("Subject")),
		ListID:          entity.Header.Get("List-Id"),
		ListUnsubscribe: entity.Header.Get("List-Unsubscribe"),
		XMailer:         entity.Header.Get("X-Mailer"),
	}

	if from := entity.Header.Get("From"); from != "" {
		pm.From, pm.FromName = splitFromHeader(from)
	}
	if date, err := entity.Header.Date(); err == nil {
		pm.Date = date
	} else {
		pm.Date = time.Now()
	}

	pm.HTMLBody, pm.TextBody = collectBodies(entity)
	return pm, nil
}

func decodeHeader(raw string) string {
	dec := new(mime.WordDecoder)
	if decoded, err := dec.DecodeHeader(raw); err == nil {
		return decoded
	}
	return raw
}

// splitFromHeader pulls the email address and display name out of a From
// header like `"Jane Doe" <jane@example.com>`.
func splitFromHeader(from string) (address, name string) {
	from = decodeHeader(from)
	if idx := strings.Index(from, "<"); idx >= 0 {
		name = strings.Trim(strings.TrimSpace(from[:idx]), `"`)
		address = strings.TrimSuffix(strings.TrimPrefix(from[idx:], "<"), ">")
		return strings.ToLower(strings.TrimSpace(address)), name
	}
	return strings.ToLower(strings.TrimSpace(from)), ""
}

// collectBodies walks a (possibly multipart) message entity, preferring the
// first HTML part and falling back to the first plain-text part.
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
		if strings.Contains(contentType, "multipart") {
			h, t := collectBodies(part)
			if htmlBody == "" {
				htmlBody = h
			}
			if textBody == "" {
				textBody = t
			}
			continue
		}
		body, _ := io.ReadAll(part.Body)
		if strings.Contains(contentType, "html") && htmlBody == "" {
			htmlBody = string(body)
		} else if strings.Contains(contentType, "text") && textBody == "" {
			textBody = string(body)
		}
	}
	return htmlBody, textBody
}

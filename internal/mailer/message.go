package mailer

import (
	"bytes"
	"fmt"
	"net/mail"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Message is an HTML mail with optional file attachments. Empty From and
// To are filled from the sender configuration.
type Message struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Compose renders msg as an RFC 5322 message: an inline HTML part followed
// by one part per attachment.
func Compose(msg Message, date time.Time) ([]byte, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("mail.ParseAddress %q: %w", msg.From, err)
	}

	to := make([]*gomail.Address, 0, len(msg.To))
	for _, rcpt := range msg.To {
		addr, err := mail.ParseAddress(rcpt)
		if err != nil {
			return nil, fmt.Errorf("mail.ParseAddress %q: %w", rcpt, err)
		}

		to = append(to, &gomail.Address{Name: addr.Name, Address: addr.Address})
	}

	var h gomail.Header
	h.SetDate(date)
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*gomail.Address{{Name: from.Name, Address: from.Address}})
	h.SetAddressList("To", to)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("mail.Header.GenerateMessageID: %w", err)
	}

	var buf bytes.Buffer
	mw, err := gomail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("mail.CreateWriter: %w", err)
	}

	var ih gomail.InlineHeader
	ih.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	part, err := mw.CreateSingleInline(ih)
	if err != nil {
		return nil, fmt.Errorf("mail.Writer.CreateSingleInline: %w", err)
	}

	if _, err := part.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("inline part Write: %w", err)
	}

	if err := part.Close(); err != nil {
		return nil, fmt.Errorf("inline part Close: %w", err)
	}

	for _, a := range msg.Attachments {
		var ah gomail.AttachmentHeader
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		ah.SetContentType(contentType, nil)
		ah.SetFilename(a.Filename)

		w, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("mail.Writer.CreateAttachment: %w", err)
		}

		if _, err := w.Write(a.Body); err != nil {
			return nil, fmt.Errorf("attachment Write: %w", err)
		}

		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("attachment Close: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mail.Writer.Close: %w", err)
	}

	return buf.Bytes(), nil
}

package contact

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"
)

// TimestampLayout matches the millisecond ISO-8601 form receivers expect.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// KeyTimestamp is the multipart field carrying the submission time.
const KeyTimestamp = "timestamp"

// Part is one optional payload entry: a text value or a file.
type Part struct {
	Key   string
	Value string
	File  *Attachment
}

// Payload is everything sent to the webhook for one submission.
type Payload struct {
	Fixed     FixedFields
	Timestamp time.Time
	Parts     []Part
}

// keys lists the multipart field names in the order Encode writes them.
func (p *Payload) keys() []string {
	keys := []string{KeyName, KeyEmail, KeyMessage, KeyTimestamp}
	for _, part := range p.Parts {
		keys = append(keys, part.Key)
	}
	return keys
}

// Encode writes p as multipart form data and returns the content type to
// send it with.
func (p *Payload) Encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)

	fields := [][2]string{
		{KeyName, p.Fixed.Name},
		{KeyEmail, p.Fixed.Email},
		{KeyMessage, p.Fixed.Message},
		{KeyTimestamp, p.Timestamp.UTC().Format(TimestampLayout)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("write %s: %w", f[0], err)
		}
	}

	for _, part := range p.Parts {
		if part.File == nil {
			if err := mw.WriteField(part.Key, part.Value); err != nil {
				return "", fmt.Errorf("write %s: %w", part.Key, err)
			}
			continue
		}
		if err := writeFile(mw, part.Key, part.File); err != nil {
			return "", fmt.Errorf("write %s: %w", part.Key, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(mw *multipart.Writer, key string, a *Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(key), quoteEscaper.Replace(a.Filename)))
	h.Set("Content-Type", contentType)

	pw, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = pw.Write(a.Data)
	return err
}

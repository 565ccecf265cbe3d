package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/artemstakhov/portfolio/internal/contact"
)

// apiSubmit accepts a whole submission in one request, either as JSON
// (text fields only) or as multipart form data (the cv file included).
// Optional fields are keyed by their type; empty ones are ignored.
func (s *Server) apiSubmit(c *gin.Context) {
	loc := s.locale(c)

	var (
		fixed   contact.FixedFields
		entries []contact.Entry
		err     error
	)
	if c.ContentType() == binding.MIMEJSON {
		fixed, entries, err = jsonSubmission(c)
	} else {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxAttachmentBytes+1<<20)
		fixed, entries, err = s.formSubmission(c)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	meta := contact.Meta{Locale: loc.Code, Origin: s.hashIP(c.ClientIP())}
	err = s.Pipeline.SubmitOnce(c.Request.Context(), loc.Messages(), meta, fixed, entries)

	var verr *contact.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": verr.Fields})
	case errors.Is(err, contact.ErrUnsupportedAttachment), errors.Is(err, contact.ErrFieldUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.Logger.Error(c.Request.Context(), "contact api delivery failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
	}
}

func jsonSubmission(c *gin.Context) (contact.FixedFields, []contact.Entry, error) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		return contact.FixedFields{}, nil, err
	}

	fixed := contact.FixedFields{
		Name:    body[contact.KeyName],
		Email:   body[contact.KeyEmail],
		Message: body[contact.KeyMessage],
	}
	var entries []contact.Entry
	for _, t := range contact.Catalog() {
		if v := body[string(t)]; v != "" && !t.Attachable() {
			entries = append(entries, contact.Entry{Type: t, Value: v})
		}
	}
	return fixed, entries, nil
}

func (s *Server) formSubmission(c *gin.Context) (contact.FixedFields, []contact.Entry, error) {
	var fixed contact.FixedFields
	if err := c.ShouldBind(&fixed); err != nil {
		return fixed, nil, err
	}

	var entries []contact.Entry
	for _, t := range contact.Catalog() {
		key := string(t)
		if t.Attachable() {
			fh, err := c.FormFile(key)
			if err != nil {
				continue
			}
			if fh.Size > s.MaxAttachmentBytes {
				return fixed, nil, &http.MaxBytesError{Limit: s.MaxAttachmentBytes}
			}
			a, err := readAttachment(c, key)
			if err != nil {
				return fixed, nil, err
			}
			entries = append(entries, contact.Entry{Type: t, Attachment: a})
			continue
		}
		if v := c.PostForm(key); v != "" {
			entries = append(entries, contact.Entry{Type: t, Value: v})
		}
	}
	return fixed, entries, nil
}

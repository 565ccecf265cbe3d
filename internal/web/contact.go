package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artemstakhov/portfolio/internal/contact"
	"github.com/artemstakhov/portfolio/internal/session"
)

func (s *Server) renderFields(c *gin.Context, status int, v formView) {
	c.HTML(status, "contact-fields.html", v)
}

func (s *Server) toggleSelector(c *gin.Context) {
	_, form, loc := s.session(c)
	syncFields(c, form)
	form.ToggleSelector()
	s.renderFields(c, http.StatusOK, newFormView(form, loc))
}

func (s *Server) addField(c *gin.Context) {
	_, form, loc := s.session(c)
	syncFields(c, form)

	t, err := contact.ParseFieldType(c.PostForm("type"))
	if err == nil {
		_, err = form.AddField(t)
	}

	status := http.StatusOK
	if err != nil {
		s.Logger.Debug(c.Request.Context(), "add field rejected", "type", c.PostForm("type"), "error", err)
		status = http.StatusConflict
	}
	s.renderFields(c, status, newFormView(form, loc))
}

// fieldInput is the name of a dynamic field's input. htmx posts every input
// of the enclosing form, so names must be unique per field.
func fieldInput(id string) string {
	return "field-" + id
}

// syncFields copies dynamic field values posted along with a request into
// the form, so typing that has not been saved yet survives re-rendering.
func syncFields(c *gin.Context, form *contact.Form) {
	if form.IsSubmitting() {
		return
	}
	for _, d := range form.Fields() {
		if v, ok := c.GetPostForm(fieldInput(d.ID)); ok && !d.Type.Attachable() {
			form.UpdateFieldValue(d.ID, v)
		}
	}
}

func (s *Server) updateField(c *gin.Context) {
	_, form, _ := s.session(c)
	id := c.Param("id")
	if v, ok := c.GetPostForm(fieldInput(id)); ok {
		form.UpdateFieldValue(id, v)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeField(c *gin.Context) {
	_, form, loc := s.session(c)
	form.RemoveField(c.Param("id"))
	s.renderFields(c, http.StatusOK, newFormView(form, loc))
}

func (s *Server) attachFile(c *gin.Context) {
	sid, form, loc := s.session(c)
	view := func(notice string) formView {
		v := newFormView(form, loc)
		v.FieldNotice = notice
		return v
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxAttachmentBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderFields(c, http.StatusRequestEntityTooLarge, view(loc.Contact.AttachmentError))
			return
		}
		s.renderFields(c, http.StatusBadRequest, view(loc.Contact.AttachmentError))
		return
	}
	if fh.Size > s.MaxAttachmentBytes {
		s.renderFields(c, http.StatusRequestEntityTooLarge, view(loc.Contact.AttachmentError))
		return
	}

	a, err := readAttachment(c, "file")
	if err != nil {
		s.renderFields(c, http.StatusBadRequest, view(loc.Contact.AttachmentError))
		return
	}

	err = s.Sessions.Attach(sid, c.Param("id"), *a)
	switch {
	case err == nil:
		s.renderFields(c, http.StatusOK, view(""))
	case errors.Is(err, session.ErrAttachmentBudget):
		s.Logger.Warn(c.Request.Context(), "attachment budget exhausted", "size", len(a.Data))
		s.renderFields(c, http.StatusServiceUnavailable, view(loc.Contact.ErrorMessage))
	case errors.Is(err, contact.ErrFieldNotFound), errors.Is(err, session.ErrUnknownSession):
		s.renderFields(c, http.StatusNotFound, view(""))
	default:
		s.renderFields(c, http.StatusUnprocessableEntity, view(loc.Contact.AttachmentError))
	}
}

// submit runs the pipeline for the visitor's form. Outcomes are rendered
// with 200 so HTMX swaps them in.
func (s *Server) submit(c *gin.Context) {
	_, form, loc := s.session(c)

	var fixed contact.FixedFields
	if err := c.ShouldBind(&fixed); err != nil {
		s.Logger.Debug(c.Request.Context(), "bad contact form body", "error", err)
	}
	syncFields(c, form)

	err := form.Submit(c.Request.Context(), fixed)

	v := newFormView(form, loc)
	var verr *contact.ValidationError
	switch {
	case err == nil:
		v.Notice, v.NoticeKind = loc.Contact.SuccessMessage, noticeSuccess
	case errors.As(err, &verr):
	case errors.Is(err, contact.ErrSubmitInFlight):
		v.Notice, v.NoticeKind = loc.Contact.BusyMessage, noticeError
	default:
		v.Notice, v.NoticeKind = loc.Contact.ErrorMessage, noticeError
	}
	c.HTML(http.StatusOK, "contact.html", v)
}

// readAttachment loads an uploaded file fully into memory.
func readAttachment(c *gin.Context, key string) (*contact.Attachment, error) {
	fh, err := c.FormFile(key)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &contact.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

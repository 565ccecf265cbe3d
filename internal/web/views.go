package web

import (
	"github.com/artemstakhov/portfolio/internal/contact"
	"github.com/artemstakhov/portfolio/internal/i18n"
)

type noticeKind string

const (
	noticeSuccess noticeKind = "success"
	noticeError   noticeKind = "error"
)

type fieldView struct {
	ID             string
	Type           contact.FieldType
	Label          string
	Placeholder    string
	InputType      string
	Value          string
	Error          string
	IsFile         bool
	AttachmentName string
}

type optionView struct {
	Type  contact.FieldType
	Label string
}

// formView is the data of contact.html and contact-fields.html.
type formView struct {
	Lang    string
	Strings i18n.ContactStrings

	Fixed        contact.FixedFields
	NameError    string
	EmailError   string
	MessageError string

	Fields       []fieldView
	Available    []optionView
	SelectorOpen bool
	Submitting   bool

	Notice      string
	NoticeKind  noticeKind
	FieldNotice string
}

func newFormView(form *contact.Form, loc *i18n.Locale) formView {
	errs := form.Errors()
	v := formView{
		Lang:         loc.Code,
		Strings:      loc.Contact,
		Fixed:        form.Fixed(),
		NameError:    errs[contact.KeyName],
		EmailError:   errs[contact.KeyEmail],
		MessageError: errs[contact.KeyMessage],
		SelectorOpen: form.SelectorOpen(),
		Submitting:   form.IsSubmitting(),
	}

	for _, d := range form.Fields() {
		fv := fieldView{
			ID:          d.ID,
			Type:        d.Type,
			Label:       loc.FieldLabel(d.Type),
			Placeholder: loc.FieldPlaceholder(d.Type),
			InputType:   inputType(d.Type),
			Value:       d.Value,
			Error:       errs[d.ID],
			IsFile:      d.Type.Attachable(),
		}
		if a, ok := form.Attachment(d.ID); ok {
			fv.AttachmentName = a.Filename
		}
		v.Fields = append(v.Fields, fv)
	}

	for _, t := range form.AvailableFieldTypes() {
		v.Available = append(v.Available, optionView{Type: t, Label: loc.FieldLabel(t)})
	}
	return v
}

func inputType(t contact.FieldType) string {
	switch t {
	case contact.FieldPhone, contact.FieldWhatsapp:
		return "tel"
	case contact.FieldLinkedin, contact.FieldPortfolio:
		return "url"
	default:
		return "text"
	}
}

type homeView struct {
	Lang    string
	Locales []*i18n.Locale
	Profile Profile
	Form    formView
}

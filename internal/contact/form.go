package contact

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Meta describes who a form belongs to. It is copied into every Attempt.
type Meta struct {
	Locale string
	Origin string
}

// Form is the state of one contact-form session: the fixed fields, the
// ordered set of dynamic fields, their attachments and the errors of the
// last attempt. At most one field of each type exists at a time.
//
// Methods are safe for concurrent use.
type Form struct {
	p *Pipeline

	mu           sync.Mutex
	messages     Messages
	meta         Meta
	fixed        FixedFields
	fields       []DynamicField
	files        map[string]*Attachment
	errs         map[string]string
	selectorOpen bool
	submitting   bool
}

// UseMessages swaps the message table, e.g. after a language change.
func (f *Form) UseMessages(m Messages, locale string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = m
	f.meta.Locale = locale
}

// AddField appends an empty field of type t and closes the type selector.
// It returns ErrFieldUnavailable if t is unknown or already present.
func (f *Form) AddField(t FieldType) (DynamicField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := lookup(t); !ok || f.indexOfTypeLocked(t) >= 0 {
		return DynamicField{}, ErrFieldUnavailable
	}

	field := DynamicField{ID: uuid.NewString(), Type: t}
	f.fields = append(f.fields, field)
	f.selectorOpen = false
	return field, nil
}

// RemoveField drops the field with id together with its error and attachment.
func (f *Form) RemoveField(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(id)
	if i < 0 {
		return
	}
	f.fields = slices.Delete(f.fields, i, i+1)
	delete(f.files, id)
	delete(f.errs, id)
}

// UpdateFieldValue replaces the value of field id and clears its error.
// Validation is deferred until Submit.
func (f *Form) UpdateFieldValue(id, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(id)
	if i < 0 {
		return
	}
	f.fields[i].Value = value
	delete(f.errs, id)
}

// SetAttachment binds a file to the cv field id.
func (f *Form) SetAttachment(id string, a Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(id)
	if i < 0 {
		return ErrFieldNotFound
	}
	if !f.fields[i].Type.Attachable() {
		return ErrNotAttachable
	}
	if !AttachmentAllowed(a.Filename) {
		return ErrUnsupportedAttachment
	}

	f.files[id] = &a
	f.fields[i].Value = a.Filename
	delete(f.errs, id)
	return nil
}

// SetFixed stores the fixed fields and clears the errors of those that changed.
func (f *Form) SetFixed(fixed FixedFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setFixedLocked(fixed)
}

func (f *Form) setFixedLocked(fixed FixedFields) {
	for _, key := range []string{KeyName, KeyEmail, KeyMessage} {
		if f.fixed.value(key) != fixed.value(key) {
			delete(f.errs, key)
		}
	}
	f.fixed = fixed
}

// ToggleSelector opens or closes the add-field menu.
func (f *Form) ToggleSelector() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectorOpen = !f.selectorOpen
}

func (f *Form) SelectorOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectorOpen
}

// AvailableFieldTypes returns the catalog minus the types already present.
func (f *Form) AvailableFieldTypes() []FieldType {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []FieldType
	for _, v := range catalog {
		if f.indexOfTypeLocked(v.typ) < 0 {
			out = append(out, v.typ)
		}
	}
	return out
}

// Fields returns a copy of the dynamic fields in insertion order.
func (f *Form) Fields() []DynamicField {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.fields)
}

// Errors returns a copy of the current validation errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errs)
}

func (f *Form) Fixed() FixedFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fixed
}

// Attachment returns the file bound to field id, if any.
func (f *Form) Attachment(id string) (Attachment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.files[id]
	if !ok {
		return Attachment{}, false
	}
	return *a, true
}

// AttachmentBytes is the total size of the files held by the form.
func (f *Form) AttachmentBytes() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, a := range f.files {
		n += int64(len(a.Data))
	}
	return n
}

func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *Form) Meta() Meta {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meta
}

func (f *Form) indexLocked(id string) int {
	return slices.IndexFunc(f.fields, func(d DynamicField) bool { return d.ID == id })
}

func (f *Form) indexOfTypeLocked(t FieldType) int {
	return slices.IndexFunc(f.fields, func(d DynamicField) bool { return d.Type == t })
}

func (f *Form) resetLocked() {
	f.fixed = FixedFields{}
	f.fields = nil
	f.files = make(map[string]*Attachment)
	f.errs = make(map[string]string)
	f.selectorOpen = false
}

func (f *Form) fieldTypesLocked() []FieldType {
	types := make([]FieldType, 0, len(f.fields))
	for _, d := range f.fields {
		types = append(types, d.Type)
	}
	return types
}

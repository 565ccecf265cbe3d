package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForm(s Sender, r Recorder) *Form {
	p := NewPipeline(Options{Sender: s, Recorder: r})
	return p.NewForm(testMessages(), Meta{Locale: "en", Origin: "test"})
}

func TestAddField_NoDuplicates(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)

	first, err := f.AddField(FieldPhone)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "", first.Value)

	_, err = f.AddField(FieldPhone)
	assert.ErrorIs(t, err, ErrFieldUnavailable)

	assert.Len(t, f.Fields(), 1)
	assert.NotContains(t, f.AvailableFieldTypes(), FieldPhone)
	assert.Len(t, f.AvailableFieldTypes(), len(Catalog())-1)
}

func TestAddField_UnknownType(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)

	_, err := f.AddField("fax")
	assert.ErrorIs(t, err, ErrFieldUnavailable)
	assert.Empty(t, f.Fields())
}

func TestAddField_ClosesSelectorAndKeepsOrder(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)

	f.ToggleSelector()
	require.True(t, f.SelectorOpen())

	ids := map[string]struct{}{}
	for _, ft := range []FieldType{FieldLinkedin, FieldPhone, FieldTelegram} {
		field, err := f.AddField(ft)
		require.NoError(t, err)
		ids[field.ID] = struct{}{}
	}

	assert.False(t, f.SelectorOpen())
	assert.Len(t, ids, 3)

	var types []FieldType
	for _, d := range f.Fields() {
		types = append(types, d.Type)
	}
	assert.Equal(t, []FieldType{FieldLinkedin, FieldPhone, FieldTelegram}, types)
}

func TestAvailableFieldTypes_AllWhenEmptyNoneWhenFull(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)
	assert.Equal(t, Catalog(), f.AvailableFieldTypes())

	for _, ft := range Catalog() {
		_, err := f.AddField(ft)
		require.NoError(t, err)
	}
	assert.Empty(t, f.AvailableFieldTypes())
}

func TestRemoveField_OnlyThatField(t *testing.T) {
	s := &fakeSender{}
	f := newTestForm(s, nil)

	phone, _ := f.AddField(FieldPhone)
	tg, _ := f.AddField(FieldTelegram)
	cv, _ := f.AddField(FieldCV)

	f.UpdateFieldValue(phone.ID, "not a phone")
	f.UpdateFieldValue(tg.ID, "no-prefix")
	require.NoError(t, f.SetAttachment(cv.ID, Attachment{Filename: "cv.pdf", Data: []byte("%PDF")}))

	err := f.Submit(t.Context(), validFixed())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, f.Errors(), phone.ID)
	require.Contains(t, f.Errors(), tg.ID)

	f.RemoveField(tg.ID)

	fields := f.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, phone.ID, fields[0].ID)
	assert.Equal(t, "not a phone", fields[0].Value)
	assert.Equal(t, cv.ID, fields[1].ID)

	errs := f.Errors()
	assert.NotContains(t, errs, tg.ID)
	assert.Contains(t, errs, phone.ID)

	_, ok := f.Attachment(cv.ID)
	assert.True(t, ok)
	assert.Contains(t, f.AvailableFieldTypes(), FieldTelegram)

	f.RemoveField(cv.ID)
	_, ok = f.Attachment(cv.ID)
	assert.False(t, ok)

	f.RemoveField("missing")
	assert.Len(t, f.Fields(), 1)
	assert.Zero(t, s.calls())
}

func TestUpdateFieldValue_ClearsError(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)

	phone, _ := f.AddField(FieldPhone)
	require.Error(t, f.Submit(t.Context(), validFixed()))
	require.Contains(t, f.Errors(), phone.ID)

	f.UpdateFieldValue(phone.ID, "+3805")
	assert.NotContains(t, f.Errors(), phone.ID)
	assert.Equal(t, "+3805", f.Fields()[0].Value)

	f.UpdateFieldValue("missing", "x")
	assert.Len(t, f.Fields(), 1)
}

func TestSetAttachment(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)

	phone, _ := f.AddField(FieldPhone)
	cv, _ := f.AddField(FieldCV)

	assert.ErrorIs(t, f.SetAttachment(phone.ID, Attachment{Filename: "cv.pdf"}), ErrNotAttachable)
	assert.ErrorIs(t, f.SetAttachment(cv.ID, Attachment{Filename: "cv.exe"}), ErrUnsupportedAttachment)
	assert.ErrorIs(t, f.SetAttachment("missing", Attachment{Filename: "cv.pdf"}), ErrFieldNotFound)

	_, ok := f.Attachment(cv.ID)
	assert.False(t, ok)

	require.NoError(t, f.SetAttachment(cv.ID, Attachment{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("x")}))
	a, ok := f.Attachment(cv.ID)
	require.True(t, ok)
	assert.Equal(t, "cv.pdf", a.Filename)
}

func TestSetFixed_ClearsChangedErrorsOnly(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)

	err := f.Submit(t.Context(), FixedFields{Name: "A", Email: "bad", Message: "short"})
	require.Error(t, err)
	require.Len(t, f.Errors(), 3)

	f.SetFixed(FixedFields{Name: "Anna", Email: "bad", Message: "short"})

	errs := f.Errors()
	assert.NotContains(t, errs, KeyName)
	assert.Contains(t, errs, KeyEmail)
	assert.Contains(t, errs, KeyMessage)
}

func TestAttachmentBytes(t *testing.T) {
	f := newTestForm(&fakeSender{}, nil)
	assert.Zero(t, f.AttachmentBytes())

	cv, err := f.AddField(FieldCV)
	require.NoError(t, err)
	require.NoError(t, f.SetAttachment(cv.ID, Attachment{Filename: "cv.pdf", Data: make([]byte, 300)}))
	assert.EqualValues(t, 300, f.AttachmentBytes())

	require.NoError(t, f.SetAttachment(cv.ID, Attachment{Filename: "cv2.pdf", Data: make([]byte, 120)}))
	assert.EqualValues(t, 120, f.AttachmentBytes())

	f.RemoveField(cv.ID)
	assert.Zero(t, f.AttachmentBytes())
}

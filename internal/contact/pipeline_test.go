package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_FixedFieldValidation(t *testing.T) {
	m := testMessages()

	tests := []struct {
		name  string
		fixed FixedFields
		key   string
		want  string
	}{
		{"short name", FixedFields{Name: "A", Email: "a@b.co", Message: "long enough message"}, KeyName, m.Name},
		{"blank name", FixedFields{Name: "  ", Email: "a@b.co", Message: "long enough message"}, KeyName, m.Name},
		{"bad email", FixedFields{Name: "Anna", Email: "anna-at-mail", Message: "long enough message"}, KeyEmail, m.Email},
		{"short message", FixedFields{Name: "Anna", Email: "a@b.co", Message: "hi there"}, KeyMessage, m.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSender{}
			r := &fakeRecorder{}
			f := newTestForm(s, r)

			err := f.Submit(t.Context(), tt.fixed)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, map[string]string{tt.key: tt.want}, verr.Fields)
			assert.Equal(t, verr.Fields, f.Errors())
			assert.Zero(t, s.calls())
			assert.False(t, f.IsSubmitting())
			assert.Equal(t, []Outcome{OutcomeInvalid}, r.outcomes())
			assert.Equal(t, tt.fixed, f.Fixed())
		})
	}
}

func TestSubmit_NameLengthCountsRunes(t *testing.T) {
	s := &fakeSender{}
	f := newTestForm(s, nil)

	require.NoError(t, f.Submit(t.Context(), FixedFields{Name: "Юл", Email: "a@b.co", Message: "Привіт, маю питання"}))
	assert.Equal(t, 1, s.calls())
}

func TestSubmit_DynamicFieldValidation(t *testing.T) {
	s := &fakeSender{}
	f := newTestForm(s, nil)

	phone, _ := f.AddField(FieldPhone)
	tg, _ := f.AddField(FieldTelegram)
	li, _ := f.AddField(FieldLinkedin)
	f.UpdateFieldValue(phone.ID, "+380501234567")
	f.UpdateFieldValue(tg.ID, "artem_dev")
	f.UpdateFieldValue(li.ID, "https://example.com")

	err := f.Submit(t.Context(), validFixed())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	m := testMessages()
	assert.Equal(t, map[string]string{
		tg.ID: m.Types[FieldTelegram],
		li.ID: m.Types[FieldLinkedin],
	}, verr.Fields)
	assert.Zero(t, s.calls())
}

func TestSubmit_SuccessResetsEverything(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 15, 123_000_000, time.UTC)
	s := &fakeSender{}
	r := &fakeRecorder{}
	p := NewPipeline(Options{Sender: s, Recorder: r, Now: func() time.Time { return now }})
	f := p.NewForm(testMessages(), Meta{Locale: "uk", Origin: "abc"})

	phone, _ := f.AddField(FieldPhone)
	cv, _ := f.AddField(FieldCV)
	site, _ := f.AddField(FieldPortfolio)
	f.UpdateFieldValue(phone.ID, " +380501234567 ")
	f.UpdateFieldValue(site.ID, "https://artem.dev")
	require.NoError(t, f.SetAttachment(cv.ID, Attachment{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7")}))

	fixed := validFixed()
	fixed.Name = "  Olena "
	require.NoError(t, f.Submit(t.Context(), fixed))

	require.Equal(t, 1, s.calls())
	payload := s.payloads[0]

	want := &Payload{
		Fixed:     validFixed(),
		Timestamp: now,
		Parts: []Part{
			{Key: "phone", Value: "+380501234567"},
			{Key: "cv", File: &Attachment{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7")}},
			{Key: "portfolio", Value: "https://artem.dev"},
		},
	}
	assert.Empty(t, cmp.Diff(want, payload))

	assert.Empty(t, f.Fields())
	assert.Empty(t, f.Errors())
	assert.Equal(t, FixedFields{}, f.Fixed())
	_, ok := f.Attachment(cv.ID)
	assert.False(t, ok)
	assert.False(t, f.IsSubmitting())
	assert.Equal(t, Catalog(), f.AvailableFieldTypes())

	require.Len(t, r.attempts, 1)
	a := r.attempts[0]
	assert.Equal(t, OutcomeSent, a.Outcome)
	assert.Equal(t, "uk", a.Locale)
	assert.Equal(t, "abc", a.Origin)
	assert.Equal(t, []FieldType{FieldPhone, FieldCV, FieldPortfolio}, a.FieldTypes)
	assert.Equal(t, now, a.At)
}

func TestSubmit_CVWithoutAttachmentIsOmitted(t *testing.T) {
	s := &fakeSender{}
	f := newTestForm(s, nil)

	_, err := f.AddField(FieldCV)
	require.NoError(t, err)

	require.NoError(t, f.Submit(t.Context(), validFixed()))
	require.Equal(t, 1, s.calls())
	assert.Empty(t, s.payloads[0].Parts)
	assert.Equal(t, []string{"name", "email", "message", "timestamp"}, s.payloads[0].keys())
}

func TestSubmit_TransportFailureKeepsState(t *testing.T) {
	s := &fakeSender{err: &TransportError{StatusCode: 502}}
	r := &fakeRecorder{}
	f := newTestForm(s, r)

	tg, _ := f.AddField(FieldTelegram)
	cv, _ := f.AddField(FieldCV)
	f.UpdateFieldValue(tg.ID, "@artem_dev")
	require.NoError(t, f.SetAttachment(cv.ID, Attachment{Filename: "cv.docx", Data: []byte("doc")}))

	err := f.Submit(t.Context(), validFixed())

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 502, terr.StatusCode)

	assert.Equal(t, validFixed(), f.Fixed())
	fields := f.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "@artem_dev", fields[0].Value)
	_, ok := f.Attachment(cv.ID)
	assert.True(t, ok)
	assert.Empty(t, f.Errors())
	assert.False(t, f.IsSubmitting())

	require.Equal(t, []Outcome{OutcomeFailed}, r.outcomes())
	assert.NotEmpty(t, r.attempts[0].Err)

	// retry with unchanged state succeeds
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	require.NoError(t, f.Submit(t.Context(), f.Fixed()))
	assert.Equal(t, 2, s.calls())
	assert.Equal(t, []Outcome{OutcomeFailed, OutcomeSent}, r.outcomes())
}

func TestSubmit_WrapsPlainSenderErrors(t *testing.T) {
	boom := errors.New("boom")
	f := newTestForm(&fakeSender{err: boom}, nil)

	err := f.Submit(t.Context(), validFixed())

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, boom)
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	s := &fakeSender{started: make(chan struct{}), block: make(chan struct{})}
	f := newTestForm(s, nil)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background(), validFixed()) }()

	<-s.started
	assert.True(t, f.IsSubmitting())

	err := f.Submit(t.Context(), validFixed())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.Equal(t, 1, s.calls())

	close(s.block)
	require.NoError(t, <-done)
	assert.False(t, f.IsSubmitting())
	assert.Equal(t, 1, s.calls())
}

func TestSubmit_DeliveryIgnoresCallerCancellation(t *testing.T) {
	s := &fakeSender{}
	f := newTestForm(s, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.Submit(ctx, validFixed()))
	require.Len(t, s.ctxErrs, 1)
	assert.NoError(t, s.ctxErrs[0])
}

func TestSubmitOnce(t *testing.T) {
	s := &fakeSender{}
	p := NewPipeline(Options{Sender: s})

	t.Run("errors keyed by type", func(t *testing.T) {
		err := p.SubmitOnce(t.Context(), testMessages(), Meta{}, validFixed(), []Entry{
			{Type: FieldPhone, Value: "+380501234567"},
			{Type: FieldTelegram, Value: "artem"},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, map[string]string{"telegram": testMessages().Types[FieldTelegram]}, verr.Fields)
		assert.Zero(t, s.calls())
	})

	t.Run("duplicate type", func(t *testing.T) {
		err := p.SubmitOnce(t.Context(), testMessages(), Meta{}, validFixed(), []Entry{
			{Type: FieldPhone, Value: "+380501234567"},
			{Type: FieldPhone, Value: "+380501234568"},
		})
		assert.ErrorIs(t, err, ErrFieldUnavailable)
	})

	t.Run("attachment on text field", func(t *testing.T) {
		err := p.SubmitOnce(t.Context(), testMessages(), Meta{}, validFixed(), []Entry{
			{Type: FieldLinkedin, Attachment: &Attachment{Filename: "cv.pdf"}},
		})
		assert.ErrorIs(t, err, ErrNotAttachable)
	})

	t.Run("sends", func(t *testing.T) {
		err := p.SubmitOnce(t.Context(), testMessages(), Meta{}, validFixed(), []Entry{
			{Type: FieldCV, Attachment: &Attachment{Filename: "cv.pdf", Data: []byte("x")}},
			{Type: FieldOther, Value: "Signal: artem.01"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, s.calls())
		assert.Equal(t, []string{"name", "email", "message", "timestamp", "cv", "other"}, s.payloads[0].keys())
	})
}

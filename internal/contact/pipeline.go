// Package contact implements the contact-form submission pipeline: the
// optional field catalog and its validation rules, the per-visitor form
// state, and delivery of a submission to the webhook as one multipart POST.
package contact

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/artemstakhov/portfolio/internal/logging"
)

// Outcome is how a submit attempt settled.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeInvalid Outcome = "invalid"
	OutcomeFailed  Outcome = "failed"
)

// Attempt describes one settled Submit call.
type Attempt struct {
	ID         string
	Locale     string
	Origin     string
	Outcome    Outcome
	FieldTypes []FieldType
	Err        string
	At         time.Time
}

// Recorder is notified exactly once per settled attempt.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

type Options struct {
	Sender   Sender
	Recorder Recorder
	Logger   logging.Logger
	Now      func() time.Time
}

// Pipeline holds what all forms share: the transport, the validator and
// the attempt recorder.
type Pipeline struct {
	sender   Sender
	recorder Recorder
	logger   logging.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewPipeline(opts Options) *Pipeline {
	p := &Pipeline{
		sender:   opts.Sender,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		validate: newFixedValidator(),
		now:      opts.Now,
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// NewForm starts an empty form session.
func (p *Pipeline) NewForm(m Messages, meta Meta) *Form {
	return &Form{
		p:        p,
		messages: m,
		meta:     meta,
		files:    make(map[string]*Attachment),
		errs:     make(map[string]string),
	}
}

// Submit validates the form and, if everything passes, delivers it.
//
// Validation failures return a *ValidationError and make no network call.
// A delivery failure returns a *TransportError and keeps all entered data.
// On success the form is emptied. A call made while another one is in
// flight returns ErrSubmitInFlight without touching the form.
func (f *Form) Submit(ctx context.Context, fixed FixedFields) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}

	f.setFixedLocked(fixed)
	clean := fixed.normalized()

	errs := validateFixed(f.p.validate, clean, f.messages)
	if len(errs) == 0 {
		errs = f.validateDynamicLocked()
	}
	if len(errs) > 0 {
		f.errs = errs
		attempt := f.attemptLocked(OutcomeInvalid)
		f.mu.Unlock()

		f.p.record(ctx, attempt)
		return &ValidationError{Fields: maps.Clone(errs)}
	}

	f.errs = make(map[string]string)
	payload := f.payloadLocked(clean)
	f.submitting = true
	f.mu.Unlock()

	// The visitor cannot abort a delivery once it started.
	err := f.p.sender.Send(context.WithoutCancel(ctx), payload)

	f.mu.Lock()
	f.submitting = false
	var attempt Attempt
	if err == nil {
		attempt = f.attemptLocked(OutcomeSent)
		f.resetLocked()
	} else {
		attempt = f.attemptLocked(OutcomeFailed)
		attempt.Err = err.Error()
	}
	f.mu.Unlock()

	f.p.record(ctx, attempt)

	if err != nil {
		f.p.logger.Warn(ctx, "contact form delivery failed", "error", err, "locale", attempt.Locale)
		var terr *TransportError
		if !errors.As(err, &terr) {
			err = &TransportError{Err: err}
		}
		return err
	}

	f.p.logger.Info(ctx, "contact form delivered", "fields", payload.keys(), "locale", attempt.Locale)
	return nil
}

func (f *Form) validateDynamicLocked() map[string]string {
	errs := make(map[string]string)
	for _, d := range f.fields {
		if d.Type == FieldCV {
			continue
		}
		if msg := ValidateField(f.messages, d.Type, d.Value); msg != "" {
			errs[d.ID] = msg
		}
	}
	return errs
}

func (f *Form) payloadLocked(fixed FixedFields) *Payload {
	p := &Payload{Fixed: fixed, Timestamp: f.p.now().UTC()}
	for _, d := range f.fields {
		if d.Type.Attachable() {
			if a, ok := f.files[d.ID]; ok {
				file := *a
				p.Parts = append(p.Parts, Part{Key: string(d.Type), File: &file})
			}
			continue
		}
		if v := strings.TrimSpace(d.Value); v != "" {
			p.Parts = append(p.Parts, Part{Key: string(d.Type), Value: v})
		}
	}
	return p
}

func (f *Form) attemptLocked(o Outcome) Attempt {
	return Attempt{
		ID:         uuid.NewString(),
		Locale:     f.meta.Locale,
		Origin:     f.meta.Origin,
		Outcome:    o,
		FieldTypes: f.fieldTypesLocked(),
		At:         f.p.now().UTC(),
	}
}

func (p *Pipeline) record(ctx context.Context, a Attempt) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, a); err != nil {
		p.logger.Warn(ctx, "failed to record contact attempt", "error", err, "outcome", a.Outcome)
	}
}

// Entry is one optional field of a stateless submission.
type Entry struct {
	Type       FieldType
	Value      string
	Attachment *Attachment
}

// SubmitOnce runs the full protocol on a throwaway form. Validation errors
// for optional fields are keyed by field type instead of id.
func (p *Pipeline) SubmitOnce(ctx context.Context, m Messages, meta Meta, fixed FixedFields, entries []Entry) error {
	form := p.NewForm(m, meta)
	ids := make(map[string]FieldType, len(entries))

	for _, e := range entries {
		field, err := form.AddField(e.Type)
		if err != nil {
			return fmt.Errorf("%w: %q", err, e.Type)
		}
		ids[field.ID] = e.Type

		if e.Attachment != nil {
			if err := form.SetAttachment(field.ID, *e.Attachment); err != nil {
				return fmt.Errorf("%w: %q", err, e.Type)
			}
			continue
		}
		form.UpdateFieldValue(field.ID, e.Value)
	}

	err := form.Submit(ctx, fixed)

	var verr *ValidationError
	if errors.As(err, &verr) {
		byType := make(map[string]string, len(verr.Fields))
		for key, msg := range verr.Fields {
			if t, ok := ids[key]; ok {
				key = string(t)
			}
			byType[key] = msg
		}
		return &ValidationError{Fields: byType}
	}
	return err
}

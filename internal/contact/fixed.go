package contact

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Keys of the fixed fields in a ValidationError and in the payload.
const (
	KeyName    = "name"
	KeyEmail   = "email"
	KeyMessage = "message"
)

// FixedFields are the three required fields of every submission.
type FixedFields struct {
	Name    string `form:"name" json:"name" validate:"required,min=2"`
	Email   string `form:"email" json:"email" validate:"required,email"`
	Message string `form:"message" json:"message" validate:"required,min=10"`
}

func (f FixedFields) normalized() FixedFields {
	return FixedFields{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

func (f FixedFields) value(key string) string {
	switch key {
	case KeyName:
		return f.Name
	case KeyEmail:
		return f.Email
	case KeyMessage:
		return f.Message
	}
	return ""
}

func newFixedValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateFixed returns one message per failing fixed field, or nil.
func validateFixed(v *validator.Validate, f FixedFields, m Messages) map[string]string {
	err := v.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{KeyName: m.invalidFormat()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case KeyName:
			out[KeyName] = m.orInvalid(m.Name)
		case KeyEmail:
			out[KeyEmail] = m.orInvalid(m.Email)
		case KeyMessage:
			out[KeyMessage] = m.orInvalid(m.Message)
		}
	}
	return out
}

package contact

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// FieldType identifies one kind of optional contact field. The set is closed;
// see Catalog.
type FieldType string

const (
	FieldPhone     FieldType = "phone"
	FieldTelegram  FieldType = "telegram"
	FieldWhatsapp  FieldType = "whatsapp"
	FieldCV        FieldType = "cv"
	FieldLinkedin  FieldType = "linkedin"
	FieldPortfolio FieldType = "portfolio"
	FieldOther     FieldType = "other"
)

// variant is one entry of the field catalog: the predicate a value must pass
// and the key its error message is looked up under.
type variant struct {
	typ    FieldType
	msgKey FieldType
	check  func(value string) bool
}

var (
	telegramPattern = regexp.MustCompile(`^(@|t\.me/)\w+$`)

	urlValidator = validator.New()

	attachmentExts = map[string]struct{}{".pdf": {}, ".doc": {}, ".docx": {}}
)

var catalog = []variant{
	{typ: FieldPhone, msgKey: FieldPhone, check: isPhoneNumber},
	{typ: FieldTelegram, msgKey: FieldTelegram, check: telegramPattern.MatchString},
	{typ: FieldWhatsapp, msgKey: FieldPhone, check: isPhoneNumber},
	{typ: FieldCV, msgKey: FieldCV, check: func(string) bool { return true }},
	{typ: FieldLinkedin, msgKey: FieldLinkedin, check: isLinkedinURL},
	{typ: FieldPortfolio, msgKey: FieldPortfolio, check: isURL},
	{typ: FieldOther, msgKey: FieldOther, check: func(v string) bool { return v != "" }},
}

// Catalog returns every field type in display order.
func Catalog() []FieldType {
	types := make([]FieldType, 0, len(catalog))
	for _, v := range catalog {
		types = append(types, v.typ)
	}
	return types
}

// ParseFieldType converts s into a catalog FieldType.
func ParseFieldType(s string) (FieldType, error) {
	if _, ok := lookup(FieldType(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrFieldUnavailable, s)
	}
	return FieldType(s), nil
}

// Attachable reports whether fields of this type carry a file instead of text.
func (t FieldType) Attachable() bool {
	return t == FieldCV
}

func lookup(t FieldType) (variant, bool) {
	for _, v := range catalog {
		if v.typ == t {
			return v, true
		}
	}
	return variant{}, false
}

// DynamicField is one optional, user-added field of a form.
type DynamicField struct {
	ID    string
	Type  FieldType
	Value string
}

// Attachment is a file bound to a cv field.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentAllowed reports whether filename has an accepted document extension.
func AttachmentAllowed(filename string) bool {
	_, ok := attachmentExts[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ValidateField checks value against the rule of field type t and returns
// the message from m describing the failure, or "" when the value is valid.
func ValidateField(m Messages, t FieldType, value string) string {
	value = strings.TrimSpace(value)

	v, ok := lookup(t)
	if !ok {
		return m.invalidFormat()
	}
	if value == "" && t != FieldCV {
		return m.fieldEmpty()
	}
	if !v.check(value) {
		return m.forType(v.msgKey)
	}
	return ""
}

func isPhoneNumber(value string) bool {
	num, err := phonenumbers.Parse(value, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

func isURL(value string) bool {
	return urlValidator.Var(value, "url") == nil
}

func isLinkedinURL(value string) bool {
	if !isURL(value) {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Host+u.Path), "linkedin.com")
}

// Package i18n loads the embedded locale tables and negotiates which one a
// visitor sees.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/artemstakhov/portfolio/internal/contact"
)

//go:embed locales/*.yaml
var localesFS embed.FS

var ErrUnknownLocale = errors.New("unknown locale")

// aliases maps legacy codes onto BCP 47 ones.
var aliases = map[string]string{"ua": "uk"}

// ContactStrings are the display strings of the contact section.
type ContactStrings struct {
	Title              string `yaml:"title"`
	NameLabel          string `yaml:"nameLabel"`
	EmailLabel         string `yaml:"emailLabel"`
	MessageLabel       string `yaml:"messageLabel"`
	NamePlaceholder    string `yaml:"namePlaceholder"`
	EmailPlaceholder   string `yaml:"emailPlaceholder"`
	MessagePlaceholder string `yaml:"messagePlaceholder"`
	SendButton         string `yaml:"sendButton"`
	SendingText        string `yaml:"sendingText"`
	SuccessMessage     string `yaml:"successMessage"`
	ErrorMessage       string `yaml:"errorMessage"`
	BusyMessage        string `yaml:"busyMessage"`
	AddFieldButton     string `yaml:"addFieldButton"`
	RemoveFieldButton  string `yaml:"removeFieldButton"`

	FieldEmptyError          string `yaml:"fieldEmptyError"`
	InvalidFormatError       string `yaml:"invalidFormatError"`
	NameValidationError      string `yaml:"nameValidationError"`
	EmailValidationError     string `yaml:"emailValidationError"`
	MessageValidationError   string `yaml:"messageValidationError"`
	PhoneValidationError     string `yaml:"phoneValidationError"`
	TelegramValidationError  string `yaml:"telegramValidationError"`
	LinkedinValidationError  string `yaml:"linkedinValidationError"`
	PortfolioValidationError string `yaml:"portfolioValidationError"`
	AttachmentError          string `yaml:"attachmentError"`

	FieldTypes        map[string]string `yaml:"fieldTypes"`
	FieldPlaceholders map[string]string `yaml:"fieldPlaceholders"`
}

type Locale struct {
	Code    string         `yaml:"code"`
	Name    string         `yaml:"name"`
	Contact ContactStrings `yaml:"contact"`
}

// Messages returns the validation texts in the form the pipeline consumes.
func (l *Locale) Messages() contact.Messages {
	c := l.Contact
	return contact.Messages{
		FieldEmpty:    c.FieldEmptyError,
		InvalidFormat: c.InvalidFormatError,
		Name:          c.NameValidationError,
		Email:         c.EmailValidationError,
		Message:       c.MessageValidationError,
		Types: map[contact.FieldType]string{
			contact.FieldPhone:     c.PhoneValidationError,
			contact.FieldTelegram:  c.TelegramValidationError,
			contact.FieldLinkedin:  c.LinkedinValidationError,
			contact.FieldPortfolio: c.PortfolioValidationError,
		},
	}
}

func (l *Locale) FieldLabel(t contact.FieldType) string {
	return l.Contact.FieldTypes[string(t)]
}

func (l *Locale) FieldPlaceholder(t contact.FieldType) string {
	return l.Contact.FieldPlaceholders[string(t)]
}

// Catalog is the set of loaded locales.
type Catalog struct {
	locales []*Locale
	byCode  map[string]*Locale
	matcher language.Matcher
}

// Load parses the embedded tables. defaultCode becomes the fallback for
// visitors whose languages match nothing.
func Load(defaultCode string) (*Catalog, error) {
	files, err := fs.Glob(localesFS, "locales/*.yaml")
	if err != nil {
		return nil, err
	}

	c := &Catalog{byCode: make(map[string]*Locale, len(files))}
	for _, name := range files {
		l, err := parseLocale(name)
		if err != nil {
			return nil, err
		}
		c.byCode[l.Code] = l
	}

	def, ok := c.byCode[normalize(defaultCode)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, defaultCode)
	}

	c.locales = append(c.locales, def)
	for _, name := range files {
		code := strings.TrimSuffix(path.Base(name), ".yaml")
		if code != def.Code {
			c.locales = append(c.locales, c.byCode[code])
		}
	}

	tags := make([]language.Tag, 0, len(c.locales))
	for _, l := range c.locales {
		tags = append(tags, language.Make(l.Code))
	}
	c.matcher = language.NewMatcher(tags)

	return c, nil
}

func parseLocale(name string) (*Locale, error) {
	data, err := localesFS.ReadFile(name)
	if err != nil {
		return nil, err
	}

	l := &Locale{}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	if want := strings.TrimSuffix(path.Base(name), ".yaml"); l.Code != want {
		return nil, fmt.Errorf("%s: code %q does not match file name", name, l.Code)
	}
	for _, t := range contact.Catalog() {
		if l.FieldLabel(t) == "" {
			return nil, fmt.Errorf("%s: missing label for field type %q", name, t)
		}
	}
	return l, nil
}

// Get returns the locale with code, accepting legacy aliases.
func (c *Catalog) Get(code string) (*Locale, bool) {
	l, ok := c.byCode[normalize(code)]
	return l, ok
}

// Default is the fallback locale.
func (c *Catalog) Default() *Locale {
	return c.locales[0]
}

// Locales lists all locales, default first.
func (c *Catalog) Locales() []*Locale {
	return c.locales
}

// Match picks a locale: an explicit code wins, then the Accept-Language
// header, then the default.
func (c *Catalog) Match(code, acceptLanguage string) *Locale {
	if l, ok := c.Get(code); ok {
		return l
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.Default()
	}

	_, idx, _ := c.matcher.Match(tags...)
	return c.locales[idx]
}

func normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if alias, ok := aliases[code]; ok {
		return alias
	}
	return code
}

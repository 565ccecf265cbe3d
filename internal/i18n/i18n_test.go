package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artemstakhov/portfolio/internal/contact"
)

func TestLoad(t *testing.T) {
	c, err := Load("en")
	require.NoError(t, err)

	var codes []string
	for _, l := range c.Locales() {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"en", "ru", "uk"}, codes)
	assert.Equal(t, "en", c.Default().Code)

	for _, l := range c.Locales() {
		for _, ft := range contact.Catalog() {
			assert.NotEmpty(t, l.FieldLabel(ft), "%s label for %s", l.Code, ft)
			assert.NotEmpty(t, l.FieldPlaceholder(ft), "%s placeholder for %s", l.Code, ft)
		}
		assert.NotEmpty(t, l.Contact.SuccessMessage, l.Code)
		assert.NotEmpty(t, l.Contact.ErrorMessage, l.Code)
	}
}

func TestLoad_UnknownDefault(t *testing.T) {
	_, err := Load("fr")
	assert.ErrorIs(t, err, ErrUnknownLocale)
}

func TestLoad_DefaultFirst(t *testing.T) {
	c, err := Load("ua")
	require.NoError(t, err)
	assert.Equal(t, "uk", c.Default().Code)
	assert.Equal(t, "uk", c.Match("", "de-DE,de;q=0.9").Code)
}

func TestMatch(t *testing.T) {
	c, err := Load("en")
	require.NoError(t, err)

	tests := []struct {
		name   string
		code   string
		accept string
		want   string
	}{
		{"explicit code", "ru", "en-US", "ru"},
		{"legacy alias", "ua", "", "uk"},
		{"unknown code falls to header", "fr", "uk-UA,uk;q=0.9,en;q=0.5", "uk"},
		{"header region variant", "", "ru-RU", "ru"},
		{"unsupported language", "", "de-DE", "en"},
		{"empty everything", "", "", "en"},
		{"garbage header", "", ";;;", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Match(tt.code, tt.accept).Code)
		})
	}
}

func TestLocale_Messages(t *testing.T) {
	c, err := Load("en")
	require.NoError(t, err)

	l, ok := c.Get("uk")
	require.True(t, ok)

	m := l.Messages()
	assert.Equal(t, l.Contact.FieldEmptyError, m.FieldEmpty)
	assert.Equal(t, l.Contact.PhoneValidationError, m.Types[contact.FieldPhone])

	assert.Equal(t, l.Contact.TelegramValidationError, contact.ValidateField(m, contact.FieldTelegram, "artem_dev"))
	assert.Equal(t, l.Contact.PhoneValidationError, contact.ValidateField(m, contact.FieldWhatsapp, "123"))
}

package contact

// defaultInvalidFormat is used when the locale table has no message at all.
const defaultInvalidFormat = "Invalid format"

// Messages holds the localized validation texts. It is supplied by the
// presentation layer and treated as opaque configuration here.
type Messages struct {
	FieldEmpty    string
	InvalidFormat string

	// Fixed-field messages.
	Name    string
	Email   string
	Message string

	// Types holds the per-type format error, keyed by the type's message key.
	Types map[FieldType]string
}

func (m Messages) invalidFormat() string {
	if m.InvalidFormat != "" {
		return m.InvalidFormat
	}
	return defaultInvalidFormat
}

func (m Messages) fieldEmpty() string {
	if m.FieldEmpty != "" {
		return m.FieldEmpty
	}
	return m.invalidFormat()
}

func (m Messages) forType(t FieldType) string {
	if msg := m.Types[t]; msg != "" {
		return msg
	}
	return m.invalidFormat()
}

func (m Messages) orInvalid(msg string) string {
	if msg != "" {
		return msg
	}
	return m.invalidFormat()
}

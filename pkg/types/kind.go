package types

import "fmt"

// Kind is the semantic type of a column. It is a small closed set checked
// via explicit switch dispatch rather than reflection.
type Kind int

const (
	// KindInteger is a whole-number column (employee counts, survey scores).
	KindInteger Kind = iota

	// KindFloat is a real-valued column.
	KindFloat

	// KindText is a free-form or enumerated string column.
	KindText

	// KindDateTime is a timestamp column parsed from its raw representation.
	KindDateTime

	// KindBoolean is a true/false column.
	KindBoolean
)

// kindNames maps each Kind to its canonical name used in configuration
// files and validation messages.
var kindNames = map[Kind]string{
	KindInteger:  "integer",
	KindFloat:    "float",
	KindText:     "text",
	KindDateTime: "datetime",
	KindBoolean:  "boolean",
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Numeric reports whether the kind is Integer or Float.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindFloat
}

// Valid reports whether the kind is one of the defined members.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind parses a canonical kind name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler so kinds round-trip through
// YAML and JSON schema files.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

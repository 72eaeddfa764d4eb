package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an identifier issued by the search site. The site is inconsistent
// about whether identifiers are JSON strings or numbers, so ID keeps the
// JSON encoding and writes it back out unchanged.
type ID struct {
	raw json.RawMessage
}

// StringID returns an ID encoded as a JSON string.
func StringID(s string) ID {
	b, _ := json.Marshal(s)
	return ID{raw: b}
}

// NumberID returns an ID encoded as a JSON number.
func NumberID(n int64) ID {
	return ID{raw: json.RawMessage(strconv.FormatInt(n, 10))}
}

// IsZero reports whether the ID was absent or null in the source document.
func (id ID) IsZero() bool {
	return len(id.raw) == 0
}

// String returns the identifier as it is sent in form bodies: strings are
// unquoted, numbers are returned verbatim.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	if id.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(id.raw, &s); err == nil {
			return s
		}
	}
	return string(id.raw)
}

// Equal reports whether two IDs have the same encoding.
func (id ID) Equal(other ID) bool {
	return bytes.Equal(id.raw, other.raw)
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler. Only strings and numbers are
// accepted; null leaves the ID zero.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		id.raw = nil
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
	default:
		return fmt.Errorf("id must be a string or number, got %s", data)
	}
	id.raw = append(json.RawMessage(nil), data...)
	return nil
}

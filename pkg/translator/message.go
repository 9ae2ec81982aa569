// Copyright 2024-2026 Aiku AI

package translator

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Message is an immutable JSON object exchanged on either side of the bridge.
// The zero value is the empty object.
type Message struct {
	raw string
}

// Parse validates data as a JSON object and returns it as a Message. The
// bytes are copied, so data may be reused after the call.
func Parse(data []byte) (Message, error) {
	return ParseString(string(data))
}

// ParseString is like Parse but takes a string.
func ParseString(s string) (Message, error) {
	if !gjson.Valid(s) {
		return Message{}, fmt.Errorf("%w: invalid JSON", ErrMalformedInput)
	}
	if root := gjson.Parse(s); !root.IsObject() {
		return Message{}, malformed("message", "an object", root)
	}
	return Message{raw: s}, nil
}

func (m Message) json() string {
	if m.raw == "" {
		return "{}"
	}
	return m.raw
}

// Type returns the message's type tag, or "" if it is absent or not a string.
func (m Message) Type() string {
	tag := gjson.Get(m.json(), "type")
	if tag.Type != gjson.String {
		return ""
	}
	return tag.Str
}

// Get reads a value using gjson path syntax.
func (m Message) Get(path string) gjson.Result {
	return gjson.Get(m.json(), path)
}

// Bytes returns a fresh copy of the encoded message.
func (m Message) Bytes() []byte {
	return []byte(m.json())
}

func (m Message) String() string {
	return m.json()
}

// Equal reports whether both messages encode the same fields in the same
// order, ignoring insignificant whitespace.
func (m Message) Equal(other Message) bool {
	return string(pretty.Ugly([]byte(m.json()))) == string(pretty.Ugly([]byte(other.json())))
}

func (m Message) MarshalJSON() ([]byte, error) {
	return m.Bytes(), nil
}

func (m *Message) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// builder applies a sequence of sjson edits to a JSON document. The first
// failing edit is kept and later edits are skipped.
type builder struct {
	raw string
	err error
}

func newBuilder(raw string) *builder {
	return &builder{raw: raw}
}

func (b *builder) set(path string, value any) *builder {
	if b.err == nil {
		b.raw, b.err = sjson.Set(b.raw, path, value)
	}
	return b
}

func (b *builder) setRaw(path, value string) *builder {
	if b.err == nil {
		b.raw, b.err = sjson.SetRaw(b.raw, path, value)
	}
	return b
}

func (b *builder) del(paths ...string) *builder {
	for _, path := range paths {
		if b.err != nil {
			break
		}
		b.raw, b.err = sjson.Delete(b.raw, path)
	}
	return b
}

func (b *builder) message() (Message, error) {
	if b.err != nil {
		return Message{}, fmt.Errorf("rewrite failed: %w", b.err)
	}
	return Message{raw: b.raw}, nil
}

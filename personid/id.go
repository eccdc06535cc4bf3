// Package personid models the 128-bit opaque identifier that keys every
// tokenized subject across the core.
package personid

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalid is returned when a string does not parse as a person identifier.
var ErrInvalid = errors.New("personid: invalid identifier")

// ID uniquely keys a tokenized person across Token, Factory, and Oracle state.
type ID uuid.UUID

// Zero is the sentinel identifier for "no person".
var Zero ID

// New generates a fresh random identifier.
func New() ID {
	return ID(uuid.New())
}

// Parse decodes the canonical string form (e.g. "123e4567-e89b-...") into an ID.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Zero, ErrInvalid
	}
	return ID(u), nil
}

// String renders the canonical hyphenated form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the raw 16-byte representation.
func (id ID) Bytes() [16]byte {
	return [16]byte(id)
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == Zero
}

// MarshalJSON renders the canonical string form rather than the underlying
// byte array, so persisted records stay human-readable.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON parses the canonical string form.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

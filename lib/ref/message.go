// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// MessageID is a validated Discord message snowflake.
//
// MessageID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type MessageID struct {
	id string
}

// ParseMessageID validates and wraps a raw snowflake string.
func ParseMessageID(raw string) (MessageID, error) {
	if err := validateSnowflake(raw, "message ID"); err != nil {
		return MessageID{}, err
	}
	return MessageID{id: raw}, nil
}

// String returns the snowflake string.
func (m MessageID) String() string { return m.id }

// IsZero reports whether the MessageID is the zero value (uninitialized).
func (m MessageID) IsZero() bool { return m.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (m MessageID) MarshalText() ([]byte, error) { return []byte(m.id), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// leaves the zero value.
func (m *MessageID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = MessageID{}
		return nil
	}
	parsed, err := ParseMessageID(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

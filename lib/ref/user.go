// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// UserID is a validated Discord user snowflake.
//
// User IDs arrive from gateway events, interaction payloads, and
// configuration. They are parsed into this type at the boundary and
// never constructed from arbitrary strings deeper in the program.
//
// UserID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw snowflake string.
func ParseUserID(raw string) (UserID, error) {
	if err := validateSnowflake(raw, "user ID"); err != nil {
		return UserID{}, err
	}
	return UserID{id: raw}, nil
}

// String returns the snowflake string.
func (u UserID) String() string { return u.id }

// IsZero reports whether the UserID is the zero value (uninitialized).
func (u UserID) IsZero() bool { return u.id == "" }

// Mention returns the chat mention form of the user (e.g. "<@123...>").
func (u UserID) Mention() string { return "<@" + u.id + ">" }

// MarshalText implements encoding.TextMarshaler.
func (u UserID) MarshalText() ([]byte, error) { return []byte(u.id), nil }

// UnmarshalText implements encoding.TextUnmarshaler, validating the
// snowflake. Empty input leaves the zero value, so optional JSON
// fields decode cleanly.
func (u *UserID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = UserID{}
		return nil
	}
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

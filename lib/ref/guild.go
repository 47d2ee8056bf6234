// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// GuildID is a validated Discord guild (server) snowflake.
//
// GuildID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type GuildID struct {
	id string
}

// ParseGuildID validates and wraps a raw snowflake string.
func ParseGuildID(raw string) (GuildID, error) {
	if err := validateSnowflake(raw, "guild ID"); err != nil {
		return GuildID{}, err
	}
	return GuildID{id: raw}, nil
}

// String returns the snowflake string.
func (g GuildID) String() string { return g.id }

// IsZero reports whether the GuildID is the zero value (uninitialized).
func (g GuildID) IsZero() bool { return g.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (g GuildID) MarshalText() ([]byte, error) { return []byte(g.id), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// leaves the zero value.
func (g *GuildID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*g = GuildID{}
		return nil
	}
	parsed, err := ParseGuildID(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

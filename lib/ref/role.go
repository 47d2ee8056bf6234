// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// RoleID is a validated Discord role snowflake. The @everyone role of
// a guild shares the guild's own snowflake; EveryoneRole converts.
//
// RoleID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type RoleID struct {
	id string
}

// ParseRoleID validates and wraps a raw snowflake string.
func ParseRoleID(raw string) (RoleID, error) {
	if err := validateSnowflake(raw, "role ID"); err != nil {
		return RoleID{}, err
	}
	return RoleID{id: raw}, nil
}

// EveryoneRole returns the implicit @everyone role of a guild, whose
// ID is defined by Discord to equal the guild ID.
func EveryoneRole(guildID GuildID) RoleID {
	return RoleID{id: guildID.String()}
}

// String returns the snowflake string.
func (r RoleID) String() string { return r.id }

// IsZero reports whether the RoleID is the zero value (uninitialized).
func (r RoleID) IsZero() bool { return r.id == "" }

// Mention returns the chat mention form of the role (e.g. "<@&123...>").
func (r RoleID) Mention() string { return "<@&" + r.id + ">" }

// MarshalText implements encoding.TextMarshaler.
func (r RoleID) MarshalText() ([]byte, error) { return []byte(r.id), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// leaves the zero value.
func (r *RoleID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = RoleID{}
		return nil
	}
	parsed, err := ParseRoleID(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

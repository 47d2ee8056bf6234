// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// ChannelID is a validated Discord channel snowflake. Channels include
// guild text channels, category channels, and DM channels — the ID
// shape is identical, so one type covers all of them.
//
// ChannelID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type ChannelID struct {
	id string
}

// ParseChannelID validates and wraps a raw snowflake string.
func ParseChannelID(raw string) (ChannelID, error) {
	if err := validateSnowflake(raw, "channel ID"); err != nil {
		return ChannelID{}, err
	}
	return ChannelID{id: raw}, nil
}

// String returns the snowflake string.
func (c ChannelID) String() string { return c.id }

// IsZero reports whether the ChannelID is the zero value (uninitialized).
func (c ChannelID) IsZero() bool { return c.id == "" }

// Mention returns the chat mention form of the channel (e.g. "<#123...>").
func (c ChannelID) Mention() string { return "<#" + c.id + ">" }

// MarshalText implements encoding.TextMarshaler.
func (c ChannelID) MarshalText() ([]byte, error) { return []byte(c.id), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// leaves the zero value.
func (c *ChannelID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = ChannelID{}
		return nil
	}
	parsed, err := ParseChannelID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

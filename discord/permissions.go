// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"fmt"
	"strconv"
)

// Permissions is a Discord permission bitset. The API serializes
// permission sets as decimal strings (the values exceed what some
// JSON consumers handle as numbers), so Permissions implements
// json.Marshaler and json.Unmarshaler with the string form.
type Permissions uint64

// Permission bits used by this project. Values are fixed by the
// Discord API contract.
const (
	PermissionAdministrator      Permissions = 1 << 3
	PermissionManageChannels     Permissions = 1 << 4
	PermissionViewChannel        Permissions = 1 << 10
	PermissionSendMessages       Permissions = 1 << 11
	PermissionManageMessages     Permissions = 1 << 13
	PermissionEmbedLinks         Permissions = 1 << 14
	PermissionAttachFiles        Permissions = 1 << 15
	PermissionReadMessageHistory Permissions = 1 << 16
)

// Has reports whether every bit of p is set in the receiver.
func (s Permissions) Has(p Permissions) bool { return s&p == p }

// String returns the decimal wire form.
func (s Permissions) String() string { return strconv.FormatUint(uint64(s), 10) }

// MarshalJSON encodes the bitset as a decimal string.
func (s Permissions) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes the decimal string form. A JSON null leaves
// the zero value.
func (s *Permissions) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = 0
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("discord: permissions must be a JSON string, got %s", data)
	}
	value, err := strconv.ParseUint(string(data[1:len(data)-1]), 10, 64)
	if err != nil {
		return fmt.Errorf("discord: invalid permissions value: %w", err)
	}
	*s = Permissions(value)
	return nil
}

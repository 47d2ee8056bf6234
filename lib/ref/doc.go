// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated Discord identifier types.
//
// Discord identifies every entity (users, guilds, channels, messages,
// roles) with a snowflake: a decimal-encoded 64-bit integer that is
// 17 to 20 digits long in practice. Raw strings from the wire, from
// configuration files, and from interaction custom IDs are parsed
// into these types exactly once, at the boundary where they enter the
// program. Everything past the boundary works with typed values and
// never re-validates.
//
// All types are immutable value types. The zero value is not valid;
// use IsZero to check. Each type implements encoding.TextMarshaler
// and encoding.TextUnmarshaler so that encoding/json validates IDs
// automatically when decoding API responses.
package ref

// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package guildconf stores per-guild panel configuration: the official
// links shown on the panel, its image URLs, and the channel/message
// where the panel lives.
//
// A Store keeps one record per guild. Reads of an unknown guild return
// the zero Config rather than an error. Writes are patches with merge
// semantics, last write wins; there is no locking across concurrent
// administrators, which is acceptable for low-frequency admin edits.
//
// Two backends are provided: a single JSON file (FileStore) and SQLite
// (SQLiteStore).
package guildconf

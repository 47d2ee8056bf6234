// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens SQLite connection pools with the pragma set
// used across Gatekeeper services: WAL journaling, NORMAL synchronous
// writes, a busy timeout so concurrent writers queue instead of
// failing, and foreign keys enforced.
//
// The pool wraps sqlitex.Pool. Callers Take a connection, use it on a
// single goroutine, and Put it back. Schema setup runs through the
// OnConnect hook so every pooled connection sees the same tables.
package sqlitepool

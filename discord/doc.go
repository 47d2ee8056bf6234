// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package discord wraps the Discord REST and gateway APIs for
// Gatekeeper's channel provisioning, messaging, and interaction needs.
//
// [Client] is an authenticated bot client over the REST API: channel
// management (create under a category with permission overwrites, get,
// delete), messaging (create, edit, fetch, DM channels), guild lookups
// (members, roles, current user), interaction responses, and slash
// command registration. All methods take a context and return explicit
// errors; API failures are returned as [*APIError] with the Discord
// JSON error code and HTTP status. [IsAPIError] tests for a specific
// code.
//
// [Gateway] maintains the websocket connection that delivers events:
// it performs the hello/identify handshake, runs the heartbeat loop,
// tracks the event sequence, resumes after reconnectable closes, and
// hands every dispatch to a caller-supplied handler. Dispatch handlers
// run in their own goroutine so a slow workflow never stalls the
// heartbeat.
//
// Request URLs are built by string concatenation on a normalized base
// URL; the base is overridable so tests can point the client at an
// httptest server.
package discord

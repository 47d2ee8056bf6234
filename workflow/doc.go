// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow implements the membership application lifecycle:
// form intake validation, private application channel provisioning
// with a fixed permission policy, review queue publication, the
// accept/reject decision protocol with best-effort outcome delivery,
// and time-bounded channel cleanup.
//
// The Engine drives the workflow against a narrow Platform interface
// so tests run against fakes. Applications are not persisted in a
// database: the queue entry message is the sole durable encoding of an
// application's status and its private channel identity.
package workflow

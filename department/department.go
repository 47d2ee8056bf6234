// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package department defines the fixed set of departments an applicant
// can apply to. The set and its display attributes are compiled in;
// the guild-specific wiring (subscriber role, review channel) comes
// from deployment configuration.
package department

import (
	"fmt"

	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Key identifies a department. Keys appear in component custom IDs and
// in configuration files, so they are short, lowercase, and stable.
type Key string

const (
	Police Key = "police"
	Medic  Key = "medic"
	Army   Key = "army"
)

// Keys lists every department in display order.
var Keys = []Key{Police, Medic, Army}

// ParseKey validates a raw department key from an untrusted source
// (custom ID, config file).
func ParseKey(raw string) (Key, error) {
	switch Key(raw) {
	case Police, Medic, Army:
		return Key(raw), nil
	}
	return "", fmt.Errorf("department: unknown key %q", raw)
}

// Department is one organizational unit applicants can join.
type Department struct {
	Key  Key
	Name string

	// Color is the embed accent used for this department's queue
	// entries.
	Color int

	// Role is the department's subscriber role. Optional: a zero
	// value means the department has no dedicated role and only staff
	// review its applications.
	Role ref.RoleID

	// ReviewChannel is where queue entries are published. Required
	// before applications to this department can be accepted.
	ReviewChannel ref.ChannelID
}

var displayAttributes = map[Key]struct {
	name  string
	color int
}{
	Police: {"Poliție", 0x3B82F6},
	Medic:  {"Medic", 0x2ECC71},
	Army:   {"Armată", 0x9BA65D},
}

// Wiring carries the guild-specific IDs for one department, supplied
// by deployment configuration.
type Wiring struct {
	Role          ref.RoleID
	ReviewChannel ref.ChannelID
}

// Registry resolves department keys to fully wired departments.
type Registry struct {
	departments map[Key]Department
}

// NewRegistry builds a registry from per-department wiring. Every key
// in wiring must be a known department; departments without wiring are
// still present, just unwired (their review channel is zero, which the
// workflow reports as a configuration error at use time, not here).
func NewRegistry(wiring map[Key]Wiring) (*Registry, error) {
	departments := make(map[Key]Department, len(Keys))
	for _, key := range Keys {
		attrs := displayAttributes[key]
		departments[key] = Department{
			Key:   key,
			Name:  attrs.name,
			Color: attrs.color,
		}
	}

	for key, wired := range wiring {
		dept, ok := departments[key]
		if !ok {
			return nil, fmt.Errorf("department: unknown key %q in wiring", key)
		}
		dept.Role = wired.Role
		dept.ReviewChannel = wired.ReviewChannel
		departments[key] = dept
	}

	return &Registry{departments: departments}, nil
}

// Get returns the department for key.
func (r *Registry) Get(key Key) (Department, error) {
	dept, ok := r.departments[key]
	if !ok {
		return Department{}, fmt.Errorf("department: unknown key %q", key)
	}
	return dept, nil
}

// All returns every department in display order.
func (r *Registry) All() []Department {
	all := make([]Department, 0, len(Keys))
	for _, key := range Keys {
		all = append(all, r.departments[key])
	}
	return all
}

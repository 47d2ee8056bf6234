// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"fmt"
	"strings"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Verdict is a terminal decision on an application.
type Verdict string

const (
	VerdictAccept Verdict = "accept"
	VerdictReject Verdict = "reject"
)

// Action is a parsed component custom ID. Custom IDs are parsed once
// at the event boundary into one of the concrete action types; the
// rest of the workflow never splits strings.
//
// Grammar:
//
//	apply:{department}
//	accept:{department}:{applicantID}
//	reject:{department}:{applicantID}
type Action interface {
	// CustomID renders the action back into its wire form.
	CustomID() string
}

// ApplyAction is a press of a department's "apply" button.
type ApplyAction struct {
	Department department.Key
}

func (a ApplyAction) CustomID() string {
	return "apply:" + string(a.Department)
}

// DecideAction is a staff press of an accept or reject control on a
// queue entry. Applicant identifies the application without any
// auxiliary lookup.
type DecideAction struct {
	Verdict    Verdict
	Department department.Key
	Applicant  ref.UserID
}

func (a DecideAction) CustomID() string {
	return string(a.Verdict) + ":" + string(a.Department) + ":" + a.Applicant.String()
}

// ParseAction parses a component custom ID. Unknown shapes are errors;
// custom IDs arrive from the platform and are not trusted.
func ParseAction(customID string) (Action, error) {
	parts := strings.Split(customID, ":")

	switch parts[0] {
	case "apply":
		if len(parts) != 2 {
			return nil, fmt.Errorf("workflow: malformed apply action %q", customID)
		}
		dept, err := department.ParseKey(parts[1])
		if err != nil {
			return nil, fmt.Errorf("workflow: apply action %q: %w", customID, err)
		}
		return ApplyAction{Department: dept}, nil

	case string(VerdictAccept), string(VerdictReject):
		if len(parts) != 3 {
			return nil, fmt.Errorf("workflow: malformed decision action %q", customID)
		}
		dept, err := department.ParseKey(parts[1])
		if err != nil {
			return nil, fmt.Errorf("workflow: decision action %q: %w", customID, err)
		}
		applicant, err := ref.ParseUserID(parts[2])
		if err != nil {
			return nil, fmt.Errorf("workflow: decision action %q: %w", customID, err)
		}
		return DecideAction{
			Verdict:    Verdict(parts[0]),
			Department: dept,
			Applicant:  applicant,
		}, nil
	}

	return nil, fmt.Errorf("workflow: unknown action %q", customID)
}

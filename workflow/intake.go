// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"strings"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Form field identifiers. These appear as modal text-input custom IDs
// and as queue entry field names, so they are stable.
const (
	FieldNameAge    = "name_age"
	FieldExperience = "experience"
	FieldSchedule   = "schedule"
	FieldMotivation = "motivation"
	FieldContact    = "contact"
)

// FieldOrder is the fixed presentation order of form answers.
var FieldOrder = []string{
	FieldNameAge,
	FieldExperience,
	FieldSchedule,
	FieldMotivation,
	FieldContact,
}

// FieldLabels maps field identifiers to the labels shown on the form
// and on queue entries.
var FieldLabels = map[string]string{
	FieldNameAge:    "Nume și vârstă",
	FieldExperience: "Experiență roleplay",
	FieldSchedule:   "Program de joc",
	FieldMotivation: "Motivație",
	FieldContact:    "Contact (7 cifre)",
}

// Answers is one submission's form answers, keyed by field identifier.
type Answers map[string]string

// Submission is a validated application request: who is applying, to
// which department, and what they answered.
type Submission struct {
	Department department.Key
	Applicant  ref.UserID

	// ApplicantName is the applicant's display name at submission
	// time, used for the channel slug and queue entry rendering.
	ApplicantName string

	Answers Answers
}

// ValidateAnswers checks a raw answer set against the intake rules:
// every field present and non-empty, and the contact field exactly
// seven ASCII digits. Answers are normalized (whitespace-trimmed) in
// place. The first failing field is reported; nothing is provisioned
// or published on failure.
func ValidateAnswers(answers Answers) error {
	for _, field := range FieldOrder {
		value := strings.TrimSpace(answers[field])
		if value == "" {
			return &ValidationError{Field: FieldLabels[field], Rule: "câmp obligatoriu"}
		}
		answers[field] = value
	}

	contact := answers[FieldContact]
	if len(contact) != 7 || !allDigits(contact) {
		return &ValidationError{Field: FieldLabels[FieldContact], Rule: "exact 7 cifre"}
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

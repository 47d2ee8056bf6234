// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected form answer. The applicant is
// told which field failed and why, and no side effects are committed.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workflow: invalid field %s: %s", e.Field, e.Rule)
}

// ConfigurationError reports missing or broken deployment setup (an
// unset category, a review channel pointing at a deleted channel). The
// workflow aborts before creating partial state; the message names the
// specific setting so an operator can fix it.
type ConfigurationError struct {
	Setting string
	Problem string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("workflow: configuration %s: %s", e.Setting, e.Problem)
}

// AuthorizationError reports an actor lacking the capability for an
// action. The denial is delivered privately; no state changes.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("workflow: not authorized to %s", e.Action)
}

// UserMessage converts a workflow error into the short message shown
// to the person who triggered it, distinguishing "fix your input" from
// "tell an administrator". Anything outside the taxonomy (platform
// I/O) gets a generic retry message; details stay in the logs.
func UserMessage(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return fmt.Sprintf("❌ Câmp invalid (%s): %s.", validation.Field, validation.Rule)
	}

	var configuration *ConfigurationError
	if errors.As(err, &configuration) {
		return fmt.Sprintf("⚠️ Configurare incompletă: %s (%s). Anunță un administrator.",
			configuration.Setting, configuration.Problem)
	}

	var authorization *AuthorizationError
	if errors.As(err, &authorization) {
		return "⛔ Nu ai permisiunea necesară pentru această acțiune."
	}

	return "⚠️ A apărut o eroare. Încearcă din nou; dacă persistă, anunță un administrator."
}

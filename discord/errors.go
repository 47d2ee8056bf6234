// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from the Discord
// API. Callers use errors.As to extract the structured information:
//
//	var apiErr *discord.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == discord.ErrCodeUnknownChannel { ... }
//	}
type APIError struct {
	// Code is the Discord JSON error code (e.g. 10003 "Unknown Channel").
	Code int `json:"code"`
	// Message is the human-readable error description from the API.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: %d (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Discord JSON error codes this project dispatches on.
const (
	ErrCodeUnknownChannel     = 10003
	ErrCodeUnknownMember      = 10007
	ErrCodeUnknownMessage     = 10008
	ErrCodeUnknownUser        = 10013
	ErrCodeMissingAccess      = 50001
	ErrCodeCannotSendToUser   = 50007
	ErrCodeMissingPermissions = 50013
)

// IsAPIError checks whether err is a *APIError with the given code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is an API error for an entity that no
// longer exists (unknown channel, message, member, or user). Cleanup
// and notification paths use this to distinguish "already gone" from a
// real failure.
func IsNotFound(err error) bool {
	return IsAPIError(err, ErrCodeUnknownChannel) ||
		IsAPIError(err, ErrCodeUnknownMessage) ||
		IsAPIError(err, ErrCodeUnknownMember) ||
		IsAPIError(err, ErrCodeUnknownUser)
}

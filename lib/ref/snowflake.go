// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

const (
	// minSnowflakeDigits and maxSnowflakeDigits bound the decimal
	// length of a Discord snowflake. Snowflakes embed a millisecond
	// timestamp relative to the Discord epoch (2015-01-01); every ID
	// issued since launch falls in this range.
	minSnowflakeDigits = 17
	maxSnowflakeDigits = 20
)

// validateSnowflake checks that raw is a plausible Discord snowflake:
// 17 to 20 ASCII decimal digits, no sign, no leading zero. The label
// names the ID kind in error messages ("user ID", "channel ID", ...).
func validateSnowflake(raw, label string) error {
	if raw == "" {
		return fmt.Errorf("empty %s", label)
	}
	if len(raw) < minSnowflakeDigits || len(raw) > maxSnowflakeDigits {
		return fmt.Errorf("%s must be %d-%d digits, got %d: %q",
			label, minSnowflakeDigits, maxSnowflakeDigits, len(raw), raw)
	}
	if raw[0] == '0' {
		return fmt.Errorf("%s has a leading zero: %q", label, raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return fmt.Errorf("%s has a non-digit character at position %d: %q", label, i, raw)
		}
	}
	return nil
}

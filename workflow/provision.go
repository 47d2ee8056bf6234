// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// maxChannelNameLength is the platform limit on channel names.
const maxChannelNameLength = 90

// cleanupTimeout bounds the deletion call made when a retention timer
// fires; there is no caller left to cancel it.
const cleanupTimeout = 30 * time.Second

// provision creates the applicant's private channel under the
// configured applications category and schedules its best-effort
// deletion after the retention window. No retry on failure: the error
// propagates before any queue entry exists.
func (e *Engine) provision(ctx context.Context, dept department.Department, sub Submission) (*discord.Channel, error) {
	if e.category.IsZero() {
		return nil, &ConfigurationError{Setting: "applications_category", Problem: "nu este setată"}
	}
	parent, err := e.platform.GetChannel(ctx, e.category)
	if err != nil {
		if discord.IsNotFound(err) {
			return nil, &ConfigurationError{Setting: "applications_category", Problem: "categoria nu mai există"}
		}
		return nil, fmt.Errorf("workflow: resolving applications category: %w", err)
	}
	if parent.Type != discord.ChannelTypeGuildCategory {
		return nil, &ConfigurationError{Setting: "applications_category", Problem: "nu este o categorie"}
	}

	// The bot's own membership is resolved fresh per submission rather
	// than cached from startup: the channel grants name the bot, and a
	// revoked membership must abort before any channel exists.
	if _, err := e.platform.GetGuildMember(ctx, e.guild, e.bot); err != nil {
		return nil, fmt.Errorf("workflow: resolving bot membership: %w", err)
	}

	ok, err := e.platform.GuildHasRole(ctx, e.guild, e.staffRole)
	if err != nil {
		return nil, fmt.Errorf("workflow: resolving staff role: %w", err)
	}
	if !ok {
		return nil, &ConfigurationError{Setting: "staff_role", Problem: "rolul nu mai există în server"}
	}
	if !dept.Role.IsZero() {
		ok, err := e.platform.GuildHasRole(ctx, e.guild, dept.Role)
		if err != nil {
			return nil, fmt.Errorf("workflow: resolving %s role: %w", dept.Key, err)
		}
		if !ok {
			return nil, &ConfigurationError{
				Setting: fmt.Sprintf("departments.%s.role", dept.Key),
				Problem: "rolul nu mai există în server",
			}
		}
	}

	channel, err := e.platform.CreateGuildChannel(ctx, e.guild, discord.CreateChannelRequest{
		Name:     channelSlug(dept.Key, sub.ApplicantName),
		Type:     discord.ChannelTypeGuildText,
		ParentID: e.category,
		// The topic carries the applicant ID so the channel remains
		// attributable after their display name changes.
		Topic:                fmt.Sprintf("Aplicație %s — aplicant %s", dept.Name, sub.Applicant),
		PermissionOverwrites: Grants(e.guild, sub.Applicant, dept, e.staffRole, e.bot),
	}, fmt.Sprintf("application from %s to %s", sub.Applicant, dept.Key))
	if err != nil {
		return nil, fmt.Errorf("workflow: creating application channel: %w", err)
	}

	e.scheduleCleanup(channel.ID, dept.Key)
	return channel, nil
}

// scheduleCleanup arms the retention timer for an application channel.
// Deletion is best-effort: an already-deleted channel is a silent
// no-op, any other failure is logged and dropped. Timers live in
// process memory only; a restart forfeits them, which is accepted
// because channels are cheap and cleanup is not safety-critical.
func (e *Engine) scheduleCleanup(channelID ref.ChannelID, dept department.Key) {
	e.clock.AfterFunc(e.retention, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		err := e.platform.DeleteChannel(ctx, channelID, "application retention window elapsed")
		switch {
		case err == nil:
			e.logger.Info("application channel deleted", "channel", channelID, "department", dept)
		case discord.IsNotFound(err):
			// Already gone.
		default:
			e.logger.Warn("application channel cleanup failed",
				"channel", channelID,
				"department", dept,
				"error", err,
			)
		}
	})
}

// channelSlug derives the application channel name from the department
// key and the applicant's display name: lowercase, runs of anything
// outside [a-z0-9] collapsed to single hyphens, trimmed, and bounded
// at the platform's 90-character limit.
func channelSlug(dept department.Key, applicantName string) string {
	raw := "aplicatie-" + string(dept) + "-" + strings.ToLower(applicantName)

	var b strings.Builder
	b.Grow(len(raw))
	lastHyphen := false
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxChannelNameLength {
		slug = strings.TrimRight(slug[:maxChannelNameLength], "-")
	}
	return slug
}

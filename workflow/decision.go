// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"

	"github.com/moldova-rp/gatekeeper/discord"
)

// Decide applies a staff decision to a queue entry: authorize the
// actor, rewrite the entry with the terminal status and disabled
// controls, then fan the outcome out to the applicant.
//
// The entry edit is the state transition; it is not guarded against a
// concurrent decision on the same entry. Two simultaneous deciders
// both succeed and the last edit wins visually — an accepted race for
// human-paced review. Re-deciding an already-decided entry just
// rewrites the same fields, so the transition is idempotent in effect.
//
// The fan-out legs (message in the private channel, direct message)
// are independent and advisory: each failure is logged and dropped,
// never rolled into the returned error. Once the edit has succeeded,
// Decide returns nil.
func (e *Engine) Decide(ctx context.Context, action DecideAction, actor *discord.Member, entry *discord.Message) error {
	if !e.Authorized(actor) {
		return &AuthorizationError{Action: "decide application"}
	}

	dept, err := e.registry.Get(action.Department)
	if err != nil {
		return err
	}

	status, color := StatusAccepted, 0x2ECC71
	if action.Verdict == VerdictReject {
		status, color = StatusRejected, 0xE74C3C
	}

	edit := discord.MessageEdit{
		Content:    entry.Content,
		Embeds:     decidedEmbeds(entry.Embeds, status, color),
		Components: disableComponents(entry.Components),
	}
	if _, err := e.platform.EditMessage(ctx, entry.ChannelID, entry.ID, edit); err != nil {
		return fmt.Errorf("workflow: editing queue entry: %w", err)
	}

	e.logger.Info("application decided",
		"department", dept.Key,
		"applicant", action.Applicant,
		"verdict", action.Verdict,
	)

	outcome := fmt.Sprintf("🎉 %s Aplicația ta pentru **%s** a fost **acceptată**!",
		action.Applicant.Mention(), dept.Name)
	if action.Verdict == VerdictReject {
		outcome = fmt.Sprintf("❌ %s Aplicația ta pentru **%s** a fost **respinsă**.",
			action.Applicant.Mention(), dept.Name)
	}

	legs := []struct {
		name string
		run  func(context.Context) error
	}{
		{"private channel message", func(ctx context.Context) error {
			return e.notifyPrivateChannel(ctx, entry, outcome)
		}},
		{"direct message", func(ctx context.Context) error {
			dm, err := e.platform.CreateDM(ctx, action.Applicant)
			if err != nil {
				return err
			}
			_, err = e.platform.CreateMessage(ctx, dm.ID, discord.MessageSend{Content: outcome})
			return err
		}},
	}
	for _, leg := range legs {
		if err := leg.run(ctx); err != nil {
			e.logger.Warn("outcome delivery failed",
				"leg", leg.name,
				"applicant", action.Applicant,
				"error", err,
			)
		}
	}
	return nil
}

// Authorized reports whether the member may decide applications: staff
// role holders and administrator-equivalent members.
func (e *Engine) Authorized(actor *discord.Member) bool {
	if actor == nil {
		return false
	}
	return actor.HasRole(e.staffRole) || actor.Permissions.Has(discord.PermissionAdministrator)
}

// notifyPrivateChannel posts the outcome into the application's
// private channel, resolved from the entry's footer annotation. A
// missing annotation, a deleted channel, or a non-text channel all
// skip silently: the channel may legitimately be gone by decision
// time.
func (e *Engine) notifyPrivateChannel(ctx context.Context, entry *discord.Message, outcome string) error {
	channelID := entryPrivateChannel(entry)
	if channelID.IsZero() {
		return nil
	}

	channel, err := e.platform.GetChannel(ctx, channelID)
	if err != nil {
		if discord.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !channel.IsText() {
		return nil
	}

	_, err = e.platform.CreateMessage(ctx, channelID, discord.MessageSend{Content: outcome})
	return err
}

// decidedEmbeds rewrites the entry's embeds with the terminal status.
// Only the Status field's value changes; every other field, the
// description, and the footer annotation carry over untouched. If
// earlier edits somehow left duplicate Status fields, all but the
// first are dropped so the decided entry renders exactly one.
func decidedEmbeds(embeds []discord.Embed, status string, color int) []discord.Embed {
	out := make([]discord.Embed, len(embeds))
	for i, embed := range embeds {
		updated := embed
		updated.Color = color

		fields := make([]discord.EmbedField, 0, len(embed.Fields))
		statusSeen := false
		for _, field := range embed.Fields {
			if field.Name == statusFieldName {
				if statusSeen {
					continue
				}
				statusSeen = true
				field.Value = status
			}
			fields = append(fields, field)
		}
		if !statusSeen {
			fields = append(fields, discord.EmbedField{Name: statusFieldName, Value: status, Inline: true})
		}
		updated.Fields = fields
		out[i] = updated
	}
	return out
}

// disableComponents returns the entry's components with every nested
// button disabled, leaving labels and custom IDs in place so the
// decided entry still shows what the controls were.
func disableComponents(components []discord.Component) []discord.Component {
	out := make([]discord.Component, len(components))
	for i, component := range components {
		updated := component
		if component.Type == discord.ComponentButton {
			updated.Disabled = true
		}
		if len(component.Components) > 0 {
			updated.Components = disableComponents(component.Components)
		}
		out[i] = updated
	}
	return out
}

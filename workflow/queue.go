// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Application status values as rendered on the queue entry. Pending is
// lowercase prose; terminal values shout so a scanning reviewer can't
// miss a decided entry.
const (
	StatusPending  = "in review"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// statusFieldName is the queue entry field carrying the application
// status. The decision coordinator replaces exactly this field.
const statusFieldName = "Status"

// metadataPrefix introduces the queue entry's footer annotation
// carrying the private channel ID. The footer is the entry's only
// machine-readable link back to the application channel, so every
// edit must preserve it.
const metadataPrefix = "aplicatie:"

// publish renders the queue entry into the department's review channel
// and, when the department has a subscriber role, sends a best-effort
// alert mentioning it. The entry carries exactly two decision controls
// whose custom IDs encode everything the decision coordinator needs.
func (e *Engine) publish(ctx context.Context, dept department.Department, sub Submission, privateChannel ref.ChannelID) (*discord.Message, error) {
	if dept.ReviewChannel.IsZero() {
		return nil, &ConfigurationError{
			Setting: fmt.Sprintf("departments.%s.review_channel", dept.Key),
			Problem: "nu este setat",
		}
	}

	entry, err := e.platform.CreateMessage(ctx, dept.ReviewChannel, discord.MessageSend{
		Embeds: []discord.Embed{queueEntryEmbed(dept, sub, privateChannel)},
		Components: []discord.Component{
			discord.NewActionRow(
				discord.NewButton(discord.ButtonSuccess, "Acceptă",
					DecideAction{Verdict: VerdictAccept, Department: dept.Key, Applicant: sub.Applicant}.CustomID()),
				discord.NewButton(discord.ButtonDanger, "Respinge",
					DecideAction{Verdict: VerdictReject, Department: dept.Key, Applicant: sub.Applicant}.CustomID()),
			),
		},
	})
	if err != nil {
		// A configured review channel that no longer resolves is an
		// operator problem, named like the unset case above.
		if discord.IsNotFound(err) {
			return nil, &ConfigurationError{
				Setting: fmt.Sprintf("departments.%s.review_channel", dept.Key),
				Problem: "canalul nu mai există",
			}
		}
		return nil, fmt.Errorf("workflow: publishing queue entry: %w", err)
	}

	if !dept.Role.IsZero() {
		_, alertErr := e.platform.CreateMessage(ctx, dept.ReviewChannel, discord.MessageSend{
			Content: fmt.Sprintf("%s — aplicație nouă de la %s.", dept.Role.Mention(), sub.Applicant.Mention()),
			AllowedMentions: &discord.AllowedMentions{
				Parse: []string{},
				Roles: []string{dept.Role.String()},
			},
		})
		if alertErr != nil {
			e.logger.Warn("subscriber alert failed",
				"department", dept.Key,
				"role", dept.Role,
				"error", alertErr,
			)
		}
	}

	return entry, nil
}

// queueEntryEmbed renders the initial review record: applicant, one
// field per form answer in fixed order, a pending Status field, the
// department's color, and the private channel annotation in the
// footer.
func queueEntryEmbed(dept department.Department, sub Submission, privateChannel ref.ChannelID) discord.Embed {
	fields := []discord.EmbedField{
		{Name: "Aplicant", Value: fmt.Sprintf("%s (%s)", sub.Applicant.Mention(), sub.ApplicantName), Inline: true},
		{Name: statusFieldName, Value: StatusPending, Inline: true},
	}
	for _, field := range FieldOrder {
		fields = append(fields, discord.EmbedField{
			Name:  FieldLabels[field],
			Value: sub.Answers[field],
		})
	}

	return discord.Embed{
		Title:       "Aplicație " + dept.Name,
		Description: "Canal privat: " + privateChannel.Mention(),
		Color:       dept.Color,
		Fields:      fields,
		Footer:      &discord.EmbedFooter{Text: metadataPrefix + privateChannel.String()},
	}
}

// entryPrivateChannel recovers the private channel ID from a queue
// entry's footer annotation. A zero ID means the annotation is missing
// or unparseable.
func entryPrivateChannel(entry *discord.Message) ref.ChannelID {
	if len(entry.Embeds) == 0 || entry.Embeds[0].Footer == nil {
		return ref.ChannelID{}
	}
	text := entry.Embeds[0].Footer.Text
	if !strings.HasPrefix(text, metadataPrefix) {
		return ref.ChannelID{}
	}
	channelID, err := ref.ParseChannelID(strings.TrimPrefix(text, metadataPrefix))
	if err != nil {
		return ref.ChannelID{}
	}
	return channelID
}

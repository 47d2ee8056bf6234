// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// InteractionType identifies what produced an INTERACTION_CREATE
// dispatch.
type InteractionType int

const (
	InteractionPing        InteractionType = 1
	InteractionCommand     InteractionType = 2
	InteractionComponent   InteractionType = 3
	InteractionModalSubmit InteractionType = 5
)

// Interaction is an INTERACTION_CREATE payload: a slash command
// invocation, a button press, or a modal submission.
//
// ID and ApplicationID are snowflakes, but interactions are transient
// (the token expires after 15 minutes) so they stay plain strings
// rather than ref types — nothing persists or cross-references them.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          InteractionType  `json:"type"`
	GuildID       ref.GuildID      `json:"guild_id,omitempty"`
	ChannelID     ref.ChannelID    `json:"channel_id,omitempty"`
	Member        *Member          `json:"member,omitempty"` // set in guild contexts
	User          *User            `json:"user,omitempty"`   // set in DM contexts
	Token         string           `json:"token"`
	Message       *Message         `json:"message,omitempty"` // set for component presses
	Data          *InteractionData `json:"data,omitempty"`
}

// Sender returns the user who triggered the interaction, regardless of
// guild or DM context.
func (i *Interaction) Sender() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionData is the polymorphic data block of an interaction:
// command name and options for commands, custom ID for component
// presses, custom ID plus submitted components for modals.
type InteractionData struct {
	Name       string              `json:"name,omitempty"`
	Options    []InteractionOption `json:"options,omitempty"`
	CustomID   string              `json:"custom_id,omitempty"`
	Components []Component         `json:"components,omitempty"`
}

// InteractionOption is one command option value. Subcommands arrive as
// an option of type 1 whose Options carry the actual values. All
// option values this project registers are strings (URLs, choices,
// channel IDs), so Value is typed as a string.
type InteractionOption struct {
	Name    string              `json:"name"`
	Type    int                 `json:"type"`
	Value   string              `json:"value,omitempty"`
	Options []InteractionOption `json:"options,omitempty"`
}

// Option returns the named nested option value, or "" if absent.
func (o InteractionOption) Option(name string) string {
	for _, option := range o.Options {
		if option.Name == name {
			return option.Value
		}
	}
	return ""
}

// TextInputValue returns the submitted value of the modal text input
// with the given custom ID, or "" if absent. Modal submissions nest
// inputs inside action rows.
func (d *InteractionData) TextInputValue(customID string) string {
	for _, row := range d.Components {
		for _, component := range row.Components {
			if component.CustomID == customID {
				return component.Value
			}
		}
	}
	return ""
}

// InteractionResponseType selects how an interaction is answered.
type InteractionResponseType int

const (
	ResponsePong            InteractionResponseType = 1
	ResponseMessage         InteractionResponseType = 4
	ResponseDeferredMessage InteractionResponseType = 5
	ResponseDeferredUpdate  InteractionResponseType = 6
	ResponseUpdateMessage   InteractionResponseType = 7
	ResponseModal           InteractionResponseType = 9
)

// MessageFlagEphemeral makes an interaction response visible only to
// the invoking user.
const MessageFlagEphemeral = 1 << 6

// InteractionResponse is the body posted to the interaction callback
// endpoint.
type InteractionResponse struct {
	Type InteractionResponseType  `json:"type"`
	Data *InteractionResponseData `json:"data,omitempty"`
}

// InteractionResponseData is the response payload: message fields for
// message responses, custom ID and title for modals.
type InteractionResponseData struct {
	Content         string           `json:"content,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	Components      []Component      `json:"components,omitempty"`
	Flags           int              `json:"flags,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
	CustomID        string           `json:"custom_id,omitempty"` // modals
	Title           string           `json:"title,omitempty"`     // modals
}

// EphemeralResponse builds a plain-text response visible only to the
// invoking user. The standard shape for acknowledgements and error
// messages.
func EphemeralResponse(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseMessage,
		Data: &InteractionResponseData{Content: content, Flags: MessageFlagEphemeral},
	}
}

// ModalResponse builds a modal-opening response. Each row must wrap a
// single text input.
func ModalResponse(customID, title string, rows ...Component) InteractionResponse {
	return InteractionResponse{
		Type: ResponseModal,
		Data: &InteractionResponseData{CustomID: customID, Title: title, Components: rows},
	}
}

// RespondToInteraction answers an interaction within its 3-second
// acknowledgement window.
func (c *Client) RespondToInteraction(ctx context.Context, interactionID, token string, response InteractionResponse) error {
	path := "/interactions/" + interactionID + "/" + token + "/callback"
	_, err := c.doRequest(ctx, http.MethodPost, path, response, "")
	if err != nil {
		return fmt.Errorf("discord: interaction response failed: %w", err)
	}
	return nil
}

// CreateFollowupMessage posts a followup message to an interaction
// that was already acknowledged (typically with a deferred response).
// Followups are authenticated by the interaction token and stay valid
// for 15 minutes after the interaction.
func (c *Client) CreateFollowupMessage(ctx context.Context, applicationID, token string, data InteractionResponseData) (*Message, error) {
	path := "/webhooks/" + applicationID + "/" + token
	body, err := c.doRequest(ctx, http.MethodPost, path, data, "")
	if err != nil {
		return nil, fmt.Errorf("discord: interaction followup failed: %w", err)
	}
	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("discord: failed to parse followup response: %w", err)
	}
	return &message, nil
}

// --- Slash command registration ---

// CommandOptionType identifies a slash command option kind.
type CommandOptionType int

const (
	OptionSubCommand CommandOptionType = 1
	OptionString     CommandOptionType = 3
	OptionChannel    CommandOptionType = 7
)

// ApplicationCommand describes one guild slash command for
// registration.
type ApplicationCommand struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Options     []ApplicationCommandOption `json:"options,omitempty"`
	// DefaultMemberPermissions gates who sees the command. Nil means
	// everyone; a pointer to a Permissions bitset restricts it.
	DefaultMemberPermissions *Permissions `json:"default_member_permissions,omitempty"`
}

// ApplicationCommandOption is one option (or subcommand) of a command.
type ApplicationCommandOption struct {
	Type         CommandOptionType          `json:"type"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description"`
	Required     bool                       `json:"required,omitempty"`
	Choices      []CommandChoice            `json:"choices,omitempty"`
	Options      []ApplicationCommandOption `json:"options,omitempty"`
	ChannelTypes []ChannelType              `json:"channel_types,omitempty"`
}

// CommandChoice is one fixed choice of a string option.
type CommandChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BulkOverwriteGuildCommands replaces the full set of guild slash
// commands in one call. Idempotent: registering the same set twice is
// a no-op on the platform side.
func (c *Client) BulkOverwriteGuildCommands(ctx context.Context, applicationID string, guildID ref.GuildID, commands []ApplicationCommand) error {
	path := "/applications/" + applicationID + "/guilds/" + guildID.String() + "/commands"
	_, err := c.doRequest(ctx, http.MethodPut, path, commands, "")
	if err != nil {
		return fmt.Errorf("discord: registering %d guild commands failed: %w", len(commands), err)
	}
	c.logger.Info("registered guild commands", "guild_id", guildID, "count", len(commands))
	return nil
}

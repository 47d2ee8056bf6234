// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// ChannelType selects the kind of channel created or returned by the
// channel endpoints.
type ChannelType int

// Channel types used by this project.
const (
	ChannelTypeGuildText     ChannelType = 0
	ChannelTypeDM            ChannelType = 1
	ChannelTypeGuildCategory ChannelType = 4
)

// OverwriteType distinguishes role and member permission overwrites.
type OverwriteType int

const (
	// OverwriteRole targets a role principal (including @everyone).
	OverwriteRole OverwriteType = 0
	// OverwriteMember targets a single user principal.
	OverwriteMember OverwriteType = 1
)

// PermissionOverwrite grants and denies permission bits for one
// principal (role or member) on a channel. ID holds either a role or
// a user snowflake depending on Type.
type PermissionOverwrite struct {
	ID    string        `json:"id"`
	Type  OverwriteType `json:"type"`
	Allow Permissions   `json:"allow"`
	Deny  Permissions   `json:"deny"`
}

// RoleOverwrite builds a permission overwrite for a role principal.
func RoleOverwrite(roleID ref.RoleID, allow, deny Permissions) PermissionOverwrite {
	return PermissionOverwrite{ID: roleID.String(), Type: OverwriteRole, Allow: allow, Deny: deny}
}

// MemberOverwrite builds a permission overwrite for a user principal.
func MemberOverwrite(userID ref.UserID, allow, deny Permissions) PermissionOverwrite {
	return PermissionOverwrite{ID: userID.String(), Type: OverwriteMember, Allow: allow, Deny: deny}
}

// Channel is a Discord channel as returned by the channel endpoints.
type Channel struct {
	ID                   ref.ChannelID         `json:"id"`
	Type                 ChannelType           `json:"type"`
	GuildID              ref.GuildID           `json:"guild_id,omitempty"`
	Name                 string                `json:"name,omitempty"`
	Topic                string                `json:"topic,omitempty"`
	ParentID             ref.ChannelID         `json:"parent_id,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// IsText reports whether messages can be posted to the channel.
func (c *Channel) IsText() bool {
	return c.Type == ChannelTypeGuildText || c.Type == ChannelTypeDM
}

// CreateChannelRequest holds parameters for creating a guild channel.
type CreateChannelRequest struct {
	Name                 string                `json:"name"`
	Type                 ChannelType           `json:"type"`
	Topic                string                `json:"topic,omitempty"`
	ParentID             ref.ChannelID         `json:"parent_id,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// User is a Discord user.
type User struct {
	ID         ref.UserID `json:"id"`
	Username   string     `json:"username"`
	GlobalName string     `json:"global_name,omitempty"`
	Bot        bool       `json:"bot,omitempty"`
}

// DisplayName returns the user-facing name: the global display name
// when set, the account username otherwise.
func (u *User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Member is a guild member. In interaction payloads the Permissions
// field carries the member's computed permissions in the interaction
// channel, which is how administrator-equivalent actors are detected
// without an extra round trip.
type Member struct {
	User        *User        `json:"user,omitempty"`
	Nick        string       `json:"nick,omitempty"`
	Roles       []ref.RoleID `json:"roles"`
	Permissions Permissions  `json:"permissions,omitempty"`
}

// DisplayName returns the member's guild-facing name: the nickname
// when set, falling back to the user's display name.
func (m *Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return m.User.DisplayName()
	}
	return ""
}

// HasRole reports whether the member holds the given role.
func (m *Member) HasRole(roleID ref.RoleID) bool {
	for _, role := range m.Roles {
		if role == roleID {
			return true
		}
	}
	return false
}

// Role is a guild role.
type Role struct {
	ID          ref.RoleID  `json:"id"`
	Name        string      `json:"name"`
	Permissions Permissions `json:"permissions,omitempty"`
}

// Embed is a rich message embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Thumbnail   *EmbedMedia  `json:"thumbnail,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"` // RFC 3339
}

// EmbedField is one name/value pair in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedAuthor is the author block of an embed.
type EmbedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedFooter is the footer block of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// EmbedMedia is a thumbnail or image attachment by URL.
type EmbedMedia struct {
	URL string `json:"url"`
}

// ComponentType identifies a message or modal component.
type ComponentType int

const (
	ComponentActionRow ComponentType = 1
	ComponentButton    ComponentType = 2
	ComponentTextInput ComponentType = 4
)

// ButtonStyle selects a button's rendering and behavior.
type ButtonStyle int

const (
	ButtonPrimary   ButtonStyle = 1
	ButtonSecondary ButtonStyle = 2
	ButtonSuccess   ButtonStyle = 3
	ButtonDanger    ButtonStyle = 4
	ButtonLink      ButtonStyle = 5
)

// TextInputStyle selects single-line or paragraph modal inputs.
type TextInputStyle int

const (
	TextInputShort     TextInputStyle = 1
	TextInputParagraph TextInputStyle = 2
)

// Component is the wire representation of a message or modal
// component. Discord uses one polymorphic JSON object for action rows,
// buttons, and text inputs; this struct is the union of the fields
// this project uses. Construct values with NewActionRow, NewButton,
// NewLinkButton, and NewTextInput rather than by hand.
type Component struct {
	Type        ComponentType `json:"type"`
	Components  []Component   `json:"components,omitempty"` // action rows
	Style       int           `json:"style,omitempty"`      // ButtonStyle or TextInputStyle
	Label       string        `json:"label,omitempty"`
	CustomID    string        `json:"custom_id,omitempty"`
	URL         string        `json:"url,omitempty"` // link buttons only
	Disabled    bool          `json:"disabled,omitempty"`
	Required    *bool         `json:"required,omitempty"` // text inputs; nil means API default (true)
	Value       string        `json:"value,omitempty"`    // text inputs: submitted or prefilled value
	Placeholder string        `json:"placeholder,omitempty"`
	MinLength   int           `json:"min_length,omitempty"`
	MaxLength   int           `json:"max_length,omitempty"`
}

// NewActionRow wraps components in an action row.
func NewActionRow(components ...Component) Component {
	return Component{Type: ComponentActionRow, Components: components}
}

// NewButton creates a custom-ID button.
func NewButton(style ButtonStyle, label, customID string) Component {
	return Component{Type: ComponentButton, Style: int(style), Label: label, CustomID: customID}
}

// NewLinkButton creates a URL button. Link buttons carry no custom ID
// and never produce interactions.
func NewLinkButton(label, url string) Component {
	return Component{Type: ComponentButton, Style: int(ButtonLink), Label: label, URL: url}
}

// NewTextInput creates a modal text input.
func NewTextInput(style TextInputStyle, customID, label string) Component {
	return Component{Type: ComponentTextInput, Style: int(style), CustomID: customID, Label: label}
}

// Message is a Discord message as returned by the message endpoints.
type Message struct {
	ID         ref.MessageID `json:"id"`
	ChannelID  ref.ChannelID `json:"channel_id"`
	Author     *User         `json:"author,omitempty"`
	Content    string        `json:"content,omitempty"`
	Embeds     []Embed       `json:"embeds,omitempty"`
	Components []Component   `json:"components,omitempty"`
}

// MessageSend holds the body for creating a message.
type MessageSend struct {
	Content         string           `json:"content,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	Components      []Component      `json:"components,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// MessageEdit holds the body for editing a message. Embeds and
// Components are always transmitted (not omitempty): the callers of
// EditMessage fully re-render the message, and omitting the keys would
// leave stale content in place.
type MessageEdit struct {
	Content    string      `json:"content"`
	Embeds     []Embed     `json:"embeds"`
	Components []Component `json:"components"`
}

// AllowedMentions restricts which mention syntaxes in a message
// actually notify. An empty Parse list with explicit Users/Roles is
// the standard way to ping exactly the intended principals.
type AllowedMentions struct {
	Parse []string `json:"parse"`
	Users []string `json:"users,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// CreateDMRequest opens (or reuses) the DM channel with a user.
type CreateDMRequest struct {
	RecipientID ref.UserID `json:"recipient_id"`
}

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

// CreateMessage sends a message to a channel. Returns the created
// message, whose ID callers persist when the message is edited later.
func (c *Client) CreateMessage(ctx context.Context, channelID ref.ChannelID, send MessageSend) (*Message, error) {
	path := "/channels/" + channelID.String() + "/messages"
	body, err := c.doRequest(ctx, http.MethodPost, path, send, "")
	if err != nil {
		return nil, fmt.Errorf("discord: send message to %s failed: %w", channelID, err)
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("discord: failed to parse message response: %w", err)
	}
	return &message, nil
}

// EditMessage replaces a message's content, embeds, and components in
// place. The edit is a full re-render: all three are transmitted even
// when empty.
func (c *Client) EditMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, edit MessageEdit) (*Message, error) {
	path := "/channels/" + channelID.String() + "/messages/" + messageID.String()
	body, err := c.doRequest(ctx, http.MethodPatch, path, edit, "")
	if err != nil {
		return nil, fmt.Errorf("discord: edit message %s in %s failed: %w", messageID, channelID, err)
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("discord: failed to parse edit response: %w", err)
	}
	return &message, nil
}

// GetMessage fetches a single message by channel and message ID.
// Returns a *APIError with code ErrCodeUnknownMessage if it was
// deleted.
func (c *Client) GetMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*Message, error) {
	path := "/channels/" + channelID.String() + "/messages/" + messageID.String()
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("discord: get message %s in %s failed: %w", messageID, channelID, err)
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("discord: failed to parse message response: %w", err)
	}
	return &message, nil
}

// CreateDM opens (or reuses) the direct-message channel with a user.
// The send itself can still fail with ErrCodeCannotSendToUser when the
// recipient blocks DMs from the guild.
func (c *Client) CreateDM(ctx context.Context, userID ref.UserID) (*Channel, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/users/@me/channels", CreateDMRequest{RecipientID: userID}, "")
	if err != nil {
		return nil, fmt.Errorf("discord: open DM with %s failed: %w", userID, err)
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return nil, fmt.Errorf("discord: failed to parse DM channel response: %w", err)
	}
	return &channel, nil
}

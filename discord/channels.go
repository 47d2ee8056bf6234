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

// CreateGuildChannel creates a channel in a guild. The audit reason,
// when non-empty, is recorded in the guild's audit log.
func (c *Client) CreateGuildChannel(ctx context.Context, guildID ref.GuildID, request CreateChannelRequest, auditReason string) (*Channel, error) {
	path := "/guilds/" + guildID.String() + "/channels"
	body, err := c.doRequest(ctx, http.MethodPost, path, request, auditReason)
	if err != nil {
		return nil, fmt.Errorf("discord: create channel %q in guild %s failed: %w", request.Name, guildID, err)
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return nil, fmt.Errorf("discord: failed to parse create channel response: %w", err)
	}

	c.logger.Info("created channel",
		"channel_id", channel.ID,
		"guild_id", guildID,
		"name", channel.Name,
	)
	return &channel, nil
}

// GetChannel fetches a channel by ID. Returns a *APIError with code
// ErrCodeUnknownChannel if the channel no longer exists.
func (c *Client) GetChannel(ctx context.Context, channelID ref.ChannelID) (*Channel, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/channels/"+channelID.String(), nil, "")
	if err != nil {
		return nil, fmt.Errorf("discord: get channel %s failed: %w", channelID, err)
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return nil, fmt.Errorf("discord: failed to parse channel response: %w", err)
	}
	return &channel, nil
}

// DeleteChannel deletes a channel by ID.
func (c *Client) DeleteChannel(ctx context.Context, channelID ref.ChannelID, auditReason string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/channels/"+channelID.String(), nil, auditReason)
	if err != nil {
		return fmt.Errorf("discord: delete channel %s failed: %w", channelID, err)
	}
	return nil
}

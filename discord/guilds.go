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

// CurrentUser returns the bot's own user. Callers use this at startup
// to learn the acting identity for permission grants; it also serves
// as a token validity check.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/users/@me", nil, "")
	if err != nil {
		return nil, fmt.Errorf("discord: get current user failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("discord: failed to parse current user response: %w", err)
	}
	return &user, nil
}

// GetGuildMember fetches a member of a guild. This is always a fresh
// fetch — there is no member cache to go stale.
func (c *Client) GetGuildMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*Member, error) {
	path := "/guilds/" + guildID.String() + "/members/" + userID.String()
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("discord: get member %s of guild %s failed: %w", userID, guildID, err)
	}

	var member Member
	if err := json.Unmarshal(body, &member); err != nil {
		return nil, fmt.Errorf("discord: failed to parse member response: %w", err)
	}
	return &member, nil
}

// GetGuildRoles returns all roles of a guild.
func (c *Client) GetGuildRoles(ctx context.Context, guildID ref.GuildID) ([]Role, error) {
	path := "/guilds/" + guildID.String() + "/roles"
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("discord: get roles of guild %s failed: %w", guildID, err)
	}

	var roles []Role
	if err := json.Unmarshal(body, &roles); err != nil {
		return nil, fmt.Errorf("discord: failed to parse roles response: %w", err)
	}
	return roles, nil
}

// GuildHasRole reports whether the guild currently defines the role.
// Provisioning uses this to verify configured role IDs still resolve
// before granting them channel access.
func (c *Client) GuildHasRole(ctx context.Context, guildID ref.GuildID, roleID ref.RoleID) (bool, error) {
	roles, err := c.GetGuildRoles(ctx, guildID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

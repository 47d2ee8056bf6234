// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package guildconf

import (
	"context"

	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Config is the persisted panel configuration for one guild. Unset
// link fields are empty strings; unset IDs are zero values. Unknown
// keys in stored records are ignored on load.
type Config struct {
	Site    string `json:"site,omitempty"`
	Panel   string `json:"panel,omitempty"`
	Discord string `json:"discord,omitempty"`
	Wiki    string `json:"wiki,omitempty"`
	Rules   string `json:"rules,omitempty"`
	Donate  string `json:"donate,omitempty"`

	ThumbURL  string `json:"thumb_url,omitempty"`
	BannerURL string `json:"banner_url,omitempty"`

	// PanelChannelID is the channel the panel message is posted to.
	// PanelMessageID is the posted message, recorded after first
	// creation so later syncs edit in place.
	PanelChannelID ref.ChannelID `json:"panel_channel_id"`
	PanelMessageID ref.MessageID `json:"panel_message_id"`
}

// Patch is a partial update to a Config. Nil fields are left unchanged.
type Patch struct {
	Site    *string
	Panel   *string
	Discord *string
	Wiki    *string
	Rules   *string
	Donate  *string

	ThumbURL  *string
	BannerURL *string

	PanelChannelID *ref.ChannelID
	PanelMessageID *ref.MessageID
}

// apply merges the patch into cfg. Retargeting the panel channel
// resets the recorded message ID unless the patch sets one explicitly,
// so the next sync creates a fresh message in the new channel instead
// of editing the old one.
func (p Patch) apply(cfg Config) Config {
	if p.Site != nil {
		cfg.Site = *p.Site
	}
	if p.Panel != nil {
		cfg.Panel = *p.Panel
	}
	if p.Discord != nil {
		cfg.Discord = *p.Discord
	}
	if p.Wiki != nil {
		cfg.Wiki = *p.Wiki
	}
	if p.Rules != nil {
		cfg.Rules = *p.Rules
	}
	if p.Donate != nil {
		cfg.Donate = *p.Donate
	}
	if p.ThumbURL != nil {
		cfg.ThumbURL = *p.ThumbURL
	}
	if p.BannerURL != nil {
		cfg.BannerURL = *p.BannerURL
	}
	if p.PanelChannelID != nil {
		cfg.PanelChannelID = *p.PanelChannelID
		if p.PanelMessageID == nil {
			cfg.PanelMessageID = ref.MessageID{}
		}
	}
	if p.PanelMessageID != nil {
		cfg.PanelMessageID = *p.PanelMessageID
	}
	return cfg
}

// StringPatch returns a pointer to s, for building Patch literals.
func StringPatch(s string) *string { return &s }

// Store is the per-guild configuration store consumed by the panel
// synchronizer and the admin command handlers.
type Store interface {
	// Get returns the guild's configuration. An unknown guild yields
	// the zero Config and no error.
	Get(ctx context.Context, guildID ref.GuildID) (Config, error)

	// Set merges the patch into the guild's record and returns the
	// resulting configuration. Last write wins.
	Set(ctx context.Context, guildID ref.GuildID, patch Patch) (Config, error)
}

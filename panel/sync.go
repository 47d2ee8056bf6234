// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/guildconf"
	"github.com/moldova-rp/gatekeeper/lib/clock"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Platform is the slice of the Discord API the synchronizer needs.
type Platform interface {
	GetChannel(ctx context.Context, channelID ref.ChannelID) (*discord.Channel, error)
	GetMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*discord.Message, error)
	CreateMessage(ctx context.Context, channelID ref.ChannelID, send discord.MessageSend) (*discord.Message, error)
	EditMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, edit discord.MessageEdit) (*discord.Message, error)
}

// Synchronizer ensures each guild has exactly one panel message,
// edited in place while the configured channel stays the same.
type Synchronizer struct {
	platform Platform
	store    guildconf.Store
	clock    clock.Clock
	logger   *slog.Logger
}

// SynchronizerConfig wires a Synchronizer. Platform and Store are
// required; Clock defaults to the real clock.
type SynchronizerConfig struct {
	Platform Platform
	Store    guildconf.Store
	Clock    clock.Clock
	Logger   *slog.Logger
}

// NewSynchronizer validates the config and returns a Synchronizer.
func NewSynchronizer(cfg SynchronizerConfig) (*Synchronizer, error) {
	if cfg.Platform == nil {
		return nil, fmt.Errorf("panel: Platform is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("panel: Store is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{platform: cfg.Platform, store: cfg.Store, clock: clk, logger: logger}, nil
}

// Ensure brings the guild's panel message in line with its stored
// configuration. No-op when no panel channel is configured, and a
// silent no-op when the configured channel is gone or not a text
// channel — an operator mid-reconfiguration should not produce errors.
//
// If a panel message is recorded and still fetchable it is edited in
// place (an edit failure is logged, not surfaced, matching the
// advisory nature of a cosmetic refresh). Any fetch failure falls
// through to creating a new message, whose ID is persisted so the
// next Ensure edits.
func (s *Synchronizer) Ensure(ctx context.Context, guildID ref.GuildID) error {
	cfg, err := s.store.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("panel: loading config for %s: %w", guildID, err)
	}
	if cfg.PanelChannelID.IsZero() {
		return nil
	}

	channel, err := s.platform.GetChannel(ctx, cfg.PanelChannelID)
	if err != nil {
		if discord.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("panel: resolving channel %s: %w", cfg.PanelChannelID, err)
	}
	if channel.Type != discord.ChannelTypeGuildText {
		return nil
	}

	payload := Render(cfg, s.clock.Now())

	if !cfg.PanelMessageID.IsZero() {
		_, err := s.platform.GetMessage(ctx, cfg.PanelChannelID, cfg.PanelMessageID)
		if err == nil {
			if _, err := s.platform.EditMessage(ctx, cfg.PanelChannelID, cfg.PanelMessageID, discord.MessageEdit{
				Embeds:     payload.Embeds,
				Components: payload.Components,
			}); err != nil {
				s.logger.Warn("panel edit failed",
					"guild", guildID,
					"message", cfg.PanelMessageID,
					"error", err,
				)
			}
			return nil
		}
		// Any fetch failure falls through to creation: a deleted
		// message silently, anything else with a note in the logs.
		if !discord.IsNotFound(err) {
			s.logger.Warn("panel fetch failed, recreating",
				"guild", guildID,
				"message", cfg.PanelMessageID,
				"error", err,
			)
		}
	}

	sent, err := s.platform.CreateMessage(ctx, cfg.PanelChannelID, discord.MessageSend{
		Embeds:     payload.Embeds,
		Components: payload.Components,
	})
	if err != nil {
		return fmt.Errorf("panel: creating panel message: %w", err)
	}

	if _, err := s.store.Set(ctx, guildID, guildconf.Patch{PanelMessageID: &sent.ID}); err != nil {
		return fmt.Errorf("panel: recording panel message %s: %w", sent.ID, err)
	}

	s.logger.Info("panel message created",
		"guild", guildID,
		"channel", cfg.PanelChannelID,
		"message", sent.ID,
	)
	return nil
}

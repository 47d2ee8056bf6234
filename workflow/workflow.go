// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/lib/clock"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Platform is the slice of the Discord API the workflow engine uses.
// *discord.Client satisfies it; tests substitute fakes.
type Platform interface {
	CreateGuildChannel(ctx context.Context, guildID ref.GuildID, request discord.CreateChannelRequest, auditReason string) (*discord.Channel, error)
	GetChannel(ctx context.Context, channelID ref.ChannelID) (*discord.Channel, error)
	DeleteChannel(ctx context.Context, channelID ref.ChannelID, auditReason string) error
	CreateMessage(ctx context.Context, channelID ref.ChannelID, send discord.MessageSend) (*discord.Message, error)
	EditMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, edit discord.MessageEdit) (*discord.Message, error)
	CreateDM(ctx context.Context, userID ref.UserID) (*discord.Channel, error)
	GetGuildMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*discord.Member, error)
	GuildHasRole(ctx context.Context, guildID ref.GuildID, roleID ref.RoleID) (bool, error)
}

// EngineConfig holds the wiring for an Engine. Platform, Registry,
// Guild, StaffRole, and Bot are required.
type EngineConfig struct {
	Platform Platform
	Registry *department.Registry

	// Guild is the community the bot serves.
	Guild ref.GuildID

	// StaffRole may decide any application; its holders also review
	// every private channel.
	StaffRole ref.RoleID

	// ApplicationsCategory is the parent category for private
	// application channels. A zero value is a configuration error
	// reported at submission time, not here, so the bot can start
	// before an operator finishes setup.
	ApplicationsCategory ref.ChannelID

	// Bot is the bot's own user, granted channel management on every
	// application channel so the retention cleanup can delete it.
	Bot ref.UserID

	// Retention is how long an application channel lives before
	// best-effort deletion. Zero means 24 hours.
	Retention time.Duration

	// Clock defaults to the real clock. Tests inject a FakeClock.
	Clock  clock.Clock
	Logger *slog.Logger
}

// Engine drives the application workflow. One Engine serves one guild.
// Engines are safe for concurrent use: all mutable state lives in
// Discord messages and channels, not in the Engine.
type Engine struct {
	platform  Platform
	registry  *department.Registry
	guild     ref.GuildID
	staffRole ref.RoleID
	category  ref.ChannelID
	bot       ref.UserID
	retention time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

const defaultRetention = 24 * time.Hour

// NewEngine validates the config and returns an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Platform == nil {
		return nil, fmt.Errorf("workflow: Platform is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("workflow: Registry is required")
	}
	if cfg.Guild.IsZero() {
		return nil, fmt.Errorf("workflow: Guild is required")
	}
	if cfg.StaffRole.IsZero() {
		return nil, fmt.Errorf("workflow: StaffRole is required")
	}
	if cfg.Bot.IsZero() {
		return nil, fmt.Errorf("workflow: Bot is required")
	}

	retention := cfg.Retention
	if retention == 0 {
		retention = defaultRetention
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		platform:  cfg.Platform,
		registry:  cfg.Registry,
		guild:     cfg.Guild,
		staffRole: cfg.StaffRole,
		category:  cfg.ApplicationsCategory,
		bot:       cfg.Bot,
		retention: retention,
		clock:     clk,
		logger:    logger,
	}, nil
}

// Receipt reports what a successful submission created.
type Receipt struct {
	// PrivateChannel is the applicant's application channel.
	PrivateChannel ref.ChannelID

	// QueueEntry is the published review record.
	QueueEntry ref.MessageID
}

// Submit runs the submission pipeline: validate the answers, provision
// the private channel, publish the queue entry. Ordering is fixed —
// the queue entry embeds the channel identity, so provisioning comes
// first, and a queue entry is never published for a channel that was
// not created.
//
// A publish failure after provisioning does not roll the channel back;
// the retention timer collects it. The error still surfaces to the
// applicant.
func (e *Engine) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	if err := ValidateAnswers(sub.Answers); err != nil {
		return nil, err
	}

	dept, err := e.registry.Get(sub.Department)
	if err != nil {
		return nil, err
	}

	channel, err := e.provision(ctx, dept, sub)
	if err != nil {
		return nil, err
	}

	entry, err := e.publish(ctx, dept, sub, channel.ID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("application submitted",
		"department", dept.Key,
		"applicant", sub.Applicant,
		"channel", channel.ID,
		"queue_entry", entry.ID,
	)
	return &Receipt{PrivateChannel: channel.ID, QueueEntry: entry.ID}, nil
}

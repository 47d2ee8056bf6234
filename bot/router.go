// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package bot routes gateway events to the pieces that handle them:
// slash commands open modals or answer directly, modal submissions
// feed the application workflow, button presses feed decisions, and
// READY refreshes the links panel. Every interaction is answered
// ephemerally; errors become short user-facing messages while details
// stay in the logs.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/guildconf"
	"github.com/moldova-rp/gatekeeper/lib/clock"
	"github.com/moldova-rp/gatekeeper/lib/ref"
	"github.com/moldova-rp/gatekeeper/panel"
	"github.com/moldova-rp/gatekeeper/workflow"
)

// Platform is the slice of the Discord API the router itself needs.
// The workflow engine and panel synchronizer carry their own slices.
type Platform interface {
	RespondToInteraction(ctx context.Context, interactionID, token string, response discord.InteractionResponse) error
	CreateFollowupMessage(ctx context.Context, applicationID, token string, data discord.InteractionResponseData) (*discord.Message, error)
	GetChannel(ctx context.Context, channelID ref.ChannelID) (*discord.Channel, error)
}

// handlerTimeout bounds one event's handling. Interactions must be
// acknowledged within seconds anyway; anything slower has failed.
const handlerTimeout = 30 * time.Second

// Config wires a Router.
type Config struct {
	Platform Platform
	Engine   *workflow.Engine
	Registry *department.Registry
	Panel    *panel.Synchronizer
	Store    guildconf.Store

	// Guild is the community this deployment serves. Interactions
	// from other guilds are ignored.
	Guild ref.GuildID

	// Clock stamps the /links reply. Defaults to the real clock.
	Clock  clock.Clock
	Logger *slog.Logger
}

// Router dispatches gateway events. One Router serves one guild.
type Router struct {
	platform Platform
	engine   *workflow.Engine
	registry *department.Registry
	panel    *panel.Synchronizer
	store    guildconf.Store
	guild    ref.GuildID
	clock    clock.Clock
	logger   *slog.Logger
}

// NewRouter validates the config and returns a Router.
func NewRouter(cfg Config) (*Router, error) {
	if cfg.Platform == nil {
		return nil, fmt.Errorf("bot: Platform is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("bot: Engine is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("bot: Registry is required")
	}
	if cfg.Panel == nil {
		return nil, fmt.Errorf("bot: Panel is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("bot: Store is required")
	}
	if cfg.Guild.IsZero() {
		return nil, fmt.Errorf("bot: Guild is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		platform: cfg.Platform,
		engine:   cfg.Engine,
		registry: cfg.Registry,
		panel:    cfg.Panel,
		store:    cfg.Store,
		guild:    cfg.Guild,
		clock:    clk,
		logger:   logger,
	}, nil
}

// Dispatch returns a gateway dispatch handler bound to ctx. Each event
// is handled under its own deadline derived from ctx.
func (r *Router) Dispatch(ctx context.Context) discord.DispatchHandler {
	return func(eventType string, data json.RawMessage) {
		eventCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
		defer cancel()
		r.HandleEvent(eventCtx, eventType, data)
	}
}

// HandleEvent routes one gateway dispatch.
func (r *Router) HandleEvent(ctx context.Context, eventType string, data json.RawMessage) {
	switch eventType {
	case "READY":
		if err := r.panel.Ensure(ctx, r.guild); err != nil {
			r.logger.Error("panel sync on ready failed", "guild_id", r.guild, "error", err)
		}

	case "INTERACTION_CREATE":
		var interaction discord.Interaction
		if err := json.Unmarshal(data, &interaction); err != nil {
			r.logger.Error("unparseable interaction", "error", err)
			return
		}
		r.HandleInteraction(ctx, &interaction)
	}
}

// HandleInteraction answers one interaction. Handler errors become
// short ephemeral messages; the full error is logged.
func (r *Router) HandleInteraction(ctx context.Context, interaction *discord.Interaction) {
	if !interaction.GuildID.IsZero() && interaction.GuildID != r.guild {
		return
	}

	var err error
	switch interaction.Type {
	case discord.InteractionCommand:
		err = r.handleCommand(ctx, interaction)
	case discord.InteractionComponent:
		err = r.handleComponent(ctx, interaction)
	case discord.InteractionModalSubmit:
		err = r.handleModalSubmit(ctx, interaction)
	default:
		return
	}
	if err == nil {
		return
	}

	r.logger.Warn("interaction failed",
		"type", interaction.Type,
		"user", senderID(interaction),
		"error", err,
	)
	response := discord.EphemeralResponse(workflow.UserMessage(err))
	if respondErr := r.platform.RespondToInteraction(ctx, interaction.ID, interaction.Token, response); respondErr != nil {
		r.logger.Error("interaction error reply failed", "error", respondErr)
	}
}

func (r *Router) handleCommand(ctx context.Context, interaction *discord.Interaction) error {
	if interaction.Data == nil {
		return fmt.Errorf("bot: command interaction without data")
	}

	switch interaction.Data.Name {
	case "apply":
		return r.handleApply(ctx, interaction)
	case "links":
		return r.handleLinks(ctx, interaction)
	case "set":
		return r.handleSet(ctx, interaction)
	}
	return fmt.Errorf("bot: unknown command %q", interaction.Data.Name)
}

// handleApply opens the application form for the chosen department.
func (r *Router) handleApply(ctx context.Context, interaction *discord.Interaction) error {
	key, err := department.ParseKey(commandOption(interaction, "department"))
	if err != nil {
		return err
	}
	dept, err := r.registry.Get(key)
	if err != nil {
		return err
	}

	action := workflow.ApplyAction{Department: key}
	response := discord.ModalResponse(action.CustomID(), "Aplicație "+dept.Name, formRows()...)
	return r.platform.RespondToInteraction(ctx, interaction.ID, interaction.Token, response)
}

// formRows builds the application form, one text input per row, in the
// fixed field order.
func formRows() []discord.Component {
	styles := map[string]discord.TextInputStyle{
		workflow.FieldNameAge:    discord.TextInputShort,
		workflow.FieldExperience: discord.TextInputParagraph,
		workflow.FieldSchedule:   discord.TextInputShort,
		workflow.FieldMotivation: discord.TextInputParagraph,
		workflow.FieldContact:    discord.TextInputShort,
	}

	rows := make([]discord.Component, 0, len(workflow.FieldOrder))
	for _, field := range workflow.FieldOrder {
		input := discord.NewTextInput(styles[field], field, workflow.FieldLabels[field])
		if field == workflow.FieldContact {
			input.MinLength = 7
			input.MaxLength = 7
			input.Placeholder = "1234567"
		}
		rows = append(rows, discord.NewActionRow(input))
	}
	return rows
}

// handleModalSubmit runs a submitted application through the workflow.
func (r *Router) handleModalSubmit(ctx context.Context, interaction *discord.Interaction) error {
	if interaction.Data == nil {
		return fmt.Errorf("bot: modal submission without data")
	}
	action, err := workflow.ParseAction(interaction.Data.CustomID)
	if err != nil {
		return err
	}
	apply, ok := action.(workflow.ApplyAction)
	if !ok {
		return fmt.Errorf("bot: modal submission with non-apply action %q", interaction.Data.CustomID)
	}
	if interaction.Member == nil || interaction.Member.User == nil {
		return fmt.Errorf("bot: modal submission without member")
	}

	answers := make(workflow.Answers, len(workflow.FieldOrder))
	for _, field := range workflow.FieldOrder {
		answers[field] = interaction.Data.TextInputValue(field)
	}

	// Provisioning and publishing take several round trips, which can
	// overrun the interaction acknowledgement window. Defer first and
	// deliver the outcome as a followup.
	deferred := discord.InteractionResponse{
		Type: discord.ResponseDeferredMessage,
		Data: &discord.InteractionResponseData{Flags: discord.MessageFlagEphemeral},
	}
	if err := r.platform.RespondToInteraction(ctx, interaction.ID, interaction.Token, deferred); err != nil {
		return fmt.Errorf("bot: deferring modal submission: %w", err)
	}

	var content string
	receipt, err := r.engine.Submit(ctx, workflow.Submission{
		Department:    apply.Department,
		Applicant:     interaction.Member.User.ID,
		ApplicantName: interaction.Member.DisplayName(),
		Answers:       answers,
	})
	if err != nil {
		// The interaction is already acknowledged, so the error has to
		// reach the applicant as a followup instead of bubbling up.
		r.logger.Warn("submission failed",
			"department", apply.Department,
			"user", interaction.Member.User.ID,
			"error", err,
		)
		content = workflow.UserMessage(err)
	} else {
		content = fmt.Sprintf("✅ Aplicația ta a fost trimisă! Canalul tău privat: %s",
			receipt.PrivateChannel.Mention())
	}

	followup := discord.InteractionResponseData{
		Content: content,
		Flags:   discord.MessageFlagEphemeral,
	}
	if _, err := r.platform.CreateFollowupMessage(ctx, interaction.ApplicationID, interaction.Token, followup); err != nil {
		r.logger.Error("submission followup failed",
			"user", interaction.Member.User.ID,
			"error", err,
		)
	}
	return nil
}

// handleComponent runs a queue entry button press through the decision
// path.
func (r *Router) handleComponent(ctx context.Context, interaction *discord.Interaction) error {
	if interaction.Data == nil || interaction.Message == nil {
		return fmt.Errorf("bot: component interaction without data or message")
	}
	action, err := workflow.ParseAction(interaction.Data.CustomID)
	if err != nil {
		return err
	}
	decide, ok := action.(workflow.DecideAction)
	if !ok {
		return fmt.Errorf("bot: component press with non-decision action %q", interaction.Data.CustomID)
	}

	if err := r.engine.Decide(ctx, decide, interaction.Member, interaction.Message); err != nil {
		return err
	}

	ack := "✅ Aplicația a fost **acceptată**."
	if decide.Verdict == workflow.VerdictReject {
		ack = "❌ Aplicația a fost **respinsă**."
	}
	return r.platform.RespondToInteraction(ctx, interaction.ID, interaction.Token, discord.EphemeralResponse(ack))
}

// handleLinks replies with the current links panel, rendered from the
// stored configuration. Ephemeral, so the pinned panel message stays
// the single public copy.
func (r *Router) handleLinks(ctx context.Context, interaction *discord.Interaction) error {
	cfg, err := r.store.Get(ctx, r.guild)
	if err != nil {
		return err
	}
	payload := panel.Render(cfg, r.clock.Now())
	response := discord.InteractionResponse{
		Type: discord.ResponseMessage,
		Data: &discord.InteractionResponseData{
			Embeds:     payload.Embeds,
			Components: payload.Components,
			Flags:      discord.MessageFlagEphemeral,
		},
	}
	return r.platform.RespondToInteraction(ctx, interaction.ID, interaction.Token, response)
}

// handleSet applies one /set subcommand to the guild configuration and
// refreshes the panel. Registration already restricts the command to
// administrators; the runtime check stops anyone who got it via a role
// override.
func (r *Router) handleSet(ctx context.Context, interaction *discord.Interaction) error {
	if interaction.Member == nil || !interaction.Member.Permissions.Has(discord.PermissionAdministrator) {
		return &workflow.AuthorizationError{Action: "change guild configuration"}
	}

	sub, err := subcommand(interaction)
	if err != nil {
		return err
	}

	var patch guildconf.Patch
	switch sub.Name {
	case "site":
		patch.Site = guildconf.StringPatch(sub.Option("url"))
	case "panel":
		patch.Panel = guildconf.StringPatch(sub.Option("url"))
	case "discord":
		patch.Discord = guildconf.StringPatch(sub.Option("url"))
	case "wiki":
		patch.Wiki = guildconf.StringPatch(sub.Option("url"))
	case "rules":
		patch.Rules = guildconf.StringPatch(sub.Option("url"))
	case "donate":
		patch.Donate = guildconf.StringPatch(sub.Option("url"))
	case "thumb":
		patch.ThumbURL = guildconf.StringPatch(sub.Option("url"))
	case "banner":
		patch.BannerURL = guildconf.StringPatch(sub.Option("url"))
	case "channel":
		channelID, err := r.validatePanelChannel(ctx, sub.Option("channel"))
		if err != nil {
			return r.platform.RespondToInteraction(ctx, interaction.ID, interaction.Token,
				discord.EphemeralResponse("❌ Canal invalid."))
		}
		patch.PanelChannelID = &channelID
	default:
		return fmt.Errorf("bot: unknown set subcommand %q", sub.Name)
	}

	if _, err := r.store.Set(ctx, r.guild, patch); err != nil {
		return err
	}

	// The panel refresh is advisory. The setting is already persisted,
	// so a transient failure here self-heals on the next sync.
	if err := r.panel.Ensure(ctx, r.guild); err != nil {
		r.logger.Warn("panel sync after set failed", "guild_id", r.guild, "error", err)
	}

	r.logger.Info("guild configuration updated",
		"guild_id", r.guild,
		"setting", sub.Name,
		"admin", senderID(interaction),
	)
	return r.platform.RespondToInteraction(ctx, interaction.ID, interaction.Token,
		discord.EphemeralResponse("✅ Configurare salvată."))
}

// validatePanelChannel checks that the submitted channel exists in
// this guild and is a text channel.
func (r *Router) validatePanelChannel(ctx context.Context, raw string) (ref.ChannelID, error) {
	channelID, err := ref.ParseChannelID(raw)
	if err != nil {
		return ref.ChannelID{}, err
	}
	channel, err := r.platform.GetChannel(ctx, channelID)
	if err != nil {
		return ref.ChannelID{}, err
	}
	if channel.GuildID != r.guild || channel.Type != discord.ChannelTypeGuildText {
		return ref.ChannelID{}, fmt.Errorf("bot: channel %s is not a text channel in this guild", channelID)
	}
	return channelID, nil
}

// commandOption returns a top-level string option of a command.
func commandOption(interaction *discord.Interaction, name string) string {
	for _, option := range interaction.Data.Options {
		if option.Name == name {
			return option.Value
		}
	}
	return ""
}

// subcommand returns the single subcommand option of a command.
func subcommand(interaction *discord.Interaction) (discord.InteractionOption, error) {
	for _, option := range interaction.Data.Options {
		if option.Type == int(discord.OptionSubCommand) {
			return option, nil
		}
	}
	return discord.InteractionOption{}, fmt.Errorf("bot: command %q without subcommand", interaction.Data.Name)
}

func senderID(interaction *discord.Interaction) string {
	if sender := interaction.Sender(); sender != nil {
		return sender.ID.String()
	}
	return ""
}

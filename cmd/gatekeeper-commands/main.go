// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// gatekeeper-commands registers the guild slash commands the bot
// serves. Run it once per deployment and again whenever the command
// set changes; registration is a bulk overwrite and is idempotent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/lib/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gatekeeper-commands:", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the gatekeeper config file (overrides GATEKEEPER_CONFIG)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable not set")
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	ctx := context.Background()

	client, err := discord.NewClient(discord.ClientConfig{
		Token:   token,
		BaseURL: cfg.Discord.APIBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	// For bots the application ID equals the bot user's ID.
	botUser, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("resolving application identity: %w", err)
	}

	cmds, err := commands()
	if err != nil {
		return err
	}
	return client.BulkOverwriteGuildCommands(ctx, botUser.ID.String(), cfg.GuildID(), cmds)
}

// commands is the full guild command set: /apply, /links, and the
// administrator-only /set group.
func commands() ([]discord.ApplicationCommand, error) {
	registry, err := department.NewRegistry(nil)
	if err != nil {
		return nil, err
	}
	departments := registry.All()
	departmentChoices := make([]discord.CommandChoice, 0, len(departments))
	for _, dept := range departments {
		departmentChoices = append(departmentChoices, discord.CommandChoice{
			Name:  dept.Name,
			Value: string(dept.Key),
		})
	}

	adminOnly := discord.PermissionAdministrator

	urlSub := func(name, description string) discord.ApplicationCommandOption {
		return discord.ApplicationCommandOption{
			Type:        discord.OptionSubCommand,
			Name:        name,
			Description: description,
			Options: []discord.ApplicationCommandOption{{
				Type:        discord.OptionString,
				Name:        "url",
				Description: "Adresa (http:// sau https://)",
				Required:    true,
			}},
		}
	}

	return []discord.ApplicationCommand{
		{
			Name:        "apply",
			Description: "Aplică la un departament",
			Options: []discord.ApplicationCommandOption{{
				Type:        discord.OptionString,
				Name:        "department",
				Description: "Departamentul la care aplici",
				Required:    true,
				Choices:     departmentChoices,
			}},
		},
		{
			Name:        "links",
			Description: "Afișează linkurile oficiale",
		},
		{
			Name:                     "set",
			Description:              "Configurează panoul de linkuri",
			DefaultMemberPermissions: &adminOnly,
			Options: []discord.ApplicationCommandOption{
				urlSub("site", "Setează linkul site-ului"),
				urlSub("panel", "Setează linkul panelului"),
				urlSub("discord", "Setează invitația Discord"),
				urlSub("wiki", "Setează linkul wiki"),
				urlSub("rules", "Setează linkul regulamentului"),
				urlSub("donate", "Setează linkul pentru donații"),
				urlSub("thumb", "Setează imaginea mică a panoului"),
				urlSub("banner", "Setează bannerul panoului"),
				{
					Type:        discord.OptionSubCommand,
					Name:        "channel",
					Description: "Setează canalul panoului de linkuri",
					Options: []discord.ApplicationCommandOption{{
						Type:         discord.OptionChannel,
						Name:         "channel",
						Description:  "Canalul text pentru panou",
						Required:     true,
						ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
					}},
				},
			},
		},
	}, nil
}

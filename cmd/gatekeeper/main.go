// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// gatekeeper runs the membership application bot for one guild: it
// connects to the Discord gateway, routes interactions into the
// application workflow, and keeps the official links panel in sync.
//
// Configuration comes from the YAML file named by GATEKEEPER_CONFIG
// (or --config); the bot token comes from the DISCORD_TOKEN
// environment variable, optionally via a .env file in the working
// directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/moldova-rp/gatekeeper/bot"
	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/guildconf"
	"github.com/moldova-rp/gatekeeper/lib/config"
	"github.com/moldova-rp/gatekeeper/panel"
	"github.com/moldova-rp/gatekeeper/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gatekeeper:", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the gatekeeper config file (overrides GATEKEEPER_CONFIG)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// A missing .env file is fine; the token may come from the real
	// environment.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := discord.NewClient(discord.ClientConfig{
		Token:   token,
		BaseURL: cfg.Discord.APIBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	botUser, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("resolving bot identity: %w", err)
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := department.NewRegistry(cfg.DepartmentWiring())
	if err != nil {
		return err
	}

	engine, err := workflow.NewEngine(workflow.EngineConfig{
		Platform:             client,
		Registry:             registry,
		Guild:                cfg.GuildID(),
		StaffRole:            cfg.StaffRoleID(),
		ApplicationsCategory: cfg.ApplicationsCategoryID(),
		Bot:                  botUser.ID,
		Retention:            cfg.RetentionWindow(),
		Logger:               logger,
	})
	if err != nil {
		return err
	}

	synchronizer, err := panel.NewSynchronizer(panel.SynchronizerConfig{
		Platform: client,
		Store:    store,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	router, err := bot.NewRouter(bot.Config{
		Platform: client,
		Engine:   engine,
		Registry: registry,
		Panel:    synchronizer,
		Store:    store,
		Guild:    cfg.GuildID(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	gateway, err := discord.NewGateway(discord.GatewayConfig{
		Client:     client,
		Handler:    router.Dispatch(ctx),
		Logger:     logger,
		GatewayURL: cfg.Discord.GatewayURL,
	})
	if err != nil {
		return err
	}

	logger.Info("gatekeeper running",
		"guild_id", cfg.GuildID(),
		"bot_user", botUser.ID,
		"store", cfg.Store.Backend,
	)

	if err := gateway.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("shutting down")
	return nil
}

// openStore builds the guild configuration store selected by the
// config. The returned close function is a no-op for the file backend.
func openStore(cfg *config.Config, logger *slog.Logger) (guildconf.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		store, err := guildconf.OpenSQLiteStore(cfg.Store.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("closing guild config store", "error", err)
			}
		}, nil
	case config.StoreFile:
		return guildconf.NewFileStore(cfg.Store.Path), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

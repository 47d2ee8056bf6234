// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the static deployment configuration for
// Gatekeeper services.
//
// Configuration comes from a single YAML file specified by:
//   - GATEKEEPER_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. The bot token is
// deliberately NOT part of this file; it is a secret and comes from
// the DISCORD_TOKEN environment variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config is the deployment configuration for one guild. ID fields are
// plain strings in the file; Validate parses them once and the typed
// accessors below hand out the results.
type Config struct {
	// Guild is the community server this deployment serves.
	Guild string `yaml:"guild"`

	// StaffRole may decide applications and reviews every application
	// channel.
	StaffRole string `yaml:"staff_role"`

	// ApplicationsCategory is the parent category for private
	// application channels. Optional at startup; required before the
	// first submission can succeed.
	ApplicationsCategory string `yaml:"applications_category"`

	// Retention is how long application channels live, as a Go
	// duration string. Default: 24h.
	Retention string `yaml:"retention"`

	// Store selects where guild configuration is persisted.
	Store StoreConfig `yaml:"store"`

	// Departments wires each department to its guild-specific role
	// and review channel.
	Departments map[string]DepartmentConfig `yaml:"departments"`

	// Discord overrides platform endpoints. Leave empty in
	// production; staging and tests point these at local servers.
	Discord DiscordConfig `yaml:"discord"`

	resolved resolvedConfig
}

// DiscordConfig holds optional platform endpoint overrides.
type DiscordConfig struct {
	// APIBaseURL overrides the REST API base URL.
	APIBaseURL string `yaml:"api_base_url"`

	// GatewayURL skips gateway URL discovery.
	GatewayURL string `yaml:"gateway_url"`
}

// StoreConfig selects the guild configuration backend.
type StoreConfig struct {
	// Backend is "file" (single JSON file) or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the file or database path.
	Path string `yaml:"path"`
}

// DepartmentConfig is one department's guild wiring.
type DepartmentConfig struct {
	// Role is the department's subscriber role. Optional.
	Role string `yaml:"role"`

	// ReviewChannel receives the department's queue entries.
	ReviewChannel string `yaml:"review_channel"`
}

// resolvedConfig holds the parsed form of the string fields, populated
// by Validate.
type resolvedConfig struct {
	guild     ref.GuildID
	staffRole ref.RoleID
	category  ref.ChannelID
	retention time.Duration
	wiring    map[department.Key]department.Wiring
}

// Default returns the configuration defaults applied before the file
// is loaded. The file itself is still required.
func Default() *Config {
	return &Config{
		Retention: "24h",
		Store: StoreConfig{
			Backend: StoreFile,
			Path:    "guild-config.json",
		},
	}
}

// Load loads configuration from the GATEKEEPER_CONFIG environment
// variable. There are no fallback paths.
func Load() (*Config, error) {
	path := os.Getenv("GATEKEEPER_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("config: GATEKEEPER_CONFIG environment variable not set; " +
			"set it to the path of your gatekeeper.yaml, or use --config")
	}
	return LoadFile(path)
}

// LoadFile loads and validates configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and parses the typed values. All
// problems are reported together, not one at a time.
func (c *Config) Validate() error {
	var errs []error

	if c.Guild == "" {
		errs = append(errs, fmt.Errorf("guild is required"))
	} else if guild, err := ref.ParseGuildID(c.Guild); err != nil {
		errs = append(errs, fmt.Errorf("guild: %w", err))
	} else {
		c.resolved.guild = guild
	}

	if c.StaffRole == "" {
		errs = append(errs, fmt.Errorf("staff_role is required"))
	} else if role, err := ref.ParseRoleID(c.StaffRole); err != nil {
		errs = append(errs, fmt.Errorf("staff_role: %w", err))
	} else {
		c.resolved.staffRole = role
	}

	if c.ApplicationsCategory != "" {
		if category, err := ref.ParseChannelID(c.ApplicationsCategory); err != nil {
			errs = append(errs, fmt.Errorf("applications_category: %w", err))
		} else {
			c.resolved.category = category
		}
	}

	retention, err := time.ParseDuration(c.Retention)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("retention: %w", err))
	case retention <= 0:
		errs = append(errs, fmt.Errorf("retention must be positive, got %s", c.Retention))
	default:
		c.resolved.retention = retention
	}

	if c.Store.Backend != StoreFile && c.Store.Backend != StoreSQLite {
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", StoreFile, StoreSQLite, c.Store.Backend))
	}
	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}

	c.resolved.wiring = make(map[department.Key]department.Wiring, len(c.Departments))
	for rawKey, deptCfg := range c.Departments {
		key, err := department.ParseKey(rawKey)
		if err != nil {
			errs = append(errs, fmt.Errorf("departments: %w", err))
			continue
		}

		var wiring department.Wiring
		if deptCfg.Role != "" {
			role, err := ref.ParseRoleID(deptCfg.Role)
			if err != nil {
				errs = append(errs, fmt.Errorf("departments.%s.role: %w", key, err))
				continue
			}
			wiring.Role = role
		}
		if deptCfg.ReviewChannel != "" {
			channel, err := ref.ParseChannelID(deptCfg.ReviewChannel)
			if err != nil {
				errs = append(errs, fmt.Errorf("departments.%s.review_channel: %w", key, err))
				continue
			}
			wiring.ReviewChannel = channel
		}
		c.resolved.wiring[key] = wiring
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// GuildID returns the parsed guild ID. Valid after Validate.
func (c *Config) GuildID() ref.GuildID { return c.resolved.guild }

// StaffRoleID returns the parsed staff role. Valid after Validate.
func (c *Config) StaffRoleID() ref.RoleID { return c.resolved.staffRole }

// ApplicationsCategoryID returns the parsed applications category, or
// the zero value when unset. Valid after Validate.
func (c *Config) ApplicationsCategoryID() ref.ChannelID { return c.resolved.category }

// RetentionWindow returns the parsed retention duration. Valid after
// Validate.
func (c *Config) RetentionWindow() time.Duration { return c.resolved.retention }

// DepartmentWiring returns the parsed per-department wiring. Valid
// after Validate.
func (c *Config) DepartmentWiring() map[department.Key]department.Wiring {
	return c.resolved.wiring
}

// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package guildconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/moldova-rp/gatekeeper/lib/ref"
)

func mustGuildID(t *testing.T, raw string) ref.GuildID {
	t.Helper()
	id, err := ref.ParseGuildID(raw)
	if err != nil {
		t.Fatalf("ParseGuildID(%q) failed: %v", raw, err)
	}
	return id
}

func mustChannelID(t *testing.T, raw string) ref.ChannelID {
	t.Helper()
	id, err := ref.ParseChannelID(raw)
	if err != nil {
		t.Fatalf("ParseChannelID(%q) failed: %v", raw, err)
	}
	return id
}

func mustMessageID(t *testing.T, raw string) ref.MessageID {
	t.Helper()
	id, err := ref.ParseMessageID(raw)
	if err != nil {
		t.Fatalf("ParseMessageID(%q) failed: %v", raw, err)
	}
	return id
}

func TestPatchApply(t *testing.T) {
	channel := mustChannelID(t, "903984074735338907")
	message := mustMessageID(t, "1125599387132641280")

	t.Run("merge keeps unset fields", func(t *testing.T) {
		base := Config{Site: "https://example.md", Wiki: "https://wiki.example.md"}
		got := Patch{Site: StringPatch("https://new.example.md")}.apply(base)
		if got.Site != "https://new.example.md" {
			t.Errorf("Site = %q", got.Site)
		}
		if got.Wiki != "https://wiki.example.md" {
			t.Errorf("Wiki was clobbered: %q", got.Wiki)
		}
	})

	t.Run("retargeting channel resets message", func(t *testing.T) {
		base := Config{PanelChannelID: channel, PanelMessageID: message}
		newChannel := mustChannelID(t, "1125599387132641280")
		got := Patch{PanelChannelID: &newChannel}.apply(base)
		if got.PanelChannelID != newChannel {
			t.Errorf("PanelChannelID = %s", got.PanelChannelID)
		}
		if !got.PanelMessageID.IsZero() {
			t.Errorf("PanelMessageID survived a channel change: %s", got.PanelMessageID)
		}
	})

	t.Run("setting message alone keeps channel", func(t *testing.T) {
		base := Config{PanelChannelID: channel}
		got := Patch{PanelMessageID: &message}.apply(base)
		if got.PanelChannelID != channel {
			t.Errorf("PanelChannelID = %s", got.PanelChannelID)
		}
		if got.PanelMessageID != message {
			t.Errorf("PanelMessageID = %s", got.PanelMessageID)
		}
	})
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()
	guildID := mustGuildID(t, "903984074735338907")
	otherGuild := mustGuildID(t, "1125599387132641280")

	t.Run("unknown guild yields zero config", func(t *testing.T) {
		cfg, err := store.Get(ctx, guildID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if cfg != (Config{}) {
			t.Errorf("expected zero config, got %+v", cfg)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		cfg, err := store.Set(ctx, guildID, Patch{Site: StringPatch("https://moldova-rp.md")})
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if cfg.Site != "https://moldova-rp.md" {
			t.Errorf("returned Site = %q", cfg.Site)
		}

		got, err := store.Get(ctx, guildID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Site != "https://moldova-rp.md" {
			t.Errorf("stored Site = %q", got.Site)
		}
	})

	t.Run("patches merge", func(t *testing.T) {
		if _, err := store.Set(ctx, guildID, Patch{Wiki: StringPatch("https://wiki.moldova-rp.md")}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := store.Get(ctx, guildID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Site != "https://moldova-rp.md" || got.Wiki != "https://wiki.moldova-rp.md" {
			t.Errorf("merge lost fields: %+v", got)
		}
	})

	t.Run("guilds are isolated", func(t *testing.T) {
		got, err := store.Get(ctx, otherGuild)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != (Config{}) {
			t.Errorf("other guild saw data: %+v", got)
		}
	})

	t.Run("panel IDs round trip", func(t *testing.T) {
		channel := mustChannelID(t, "903984074735338907")
		message := mustMessageID(t, "1125599387132641280")
		if _, err := store.Set(ctx, guildID, Patch{PanelChannelID: &channel}); err != nil {
			t.Fatalf("Set channel failed: %v", err)
		}
		if _, err := store.Set(ctx, guildID, Patch{PanelMessageID: &message}); err != nil {
			t.Fatalf("Set message failed: %v", err)
		}
		got, err := store.Get(ctx, guildID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.PanelChannelID != channel || got.PanelMessageID != message {
			t.Errorf("panel IDs = %s / %s", got.PanelChannelID, got.PanelMessageID)
		}
	})
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guild-config.json")
	testStore(t, NewFileStore(path))

	t.Run("survives reopen", func(t *testing.T) {
		reopened := NewFileStore(path)
		got, err := reopened.Get(context.Background(), mustGuildID(t, "903984074735338907"))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Site != "https://moldova-rp.md" {
			t.Errorf("reopened Site = %q", got.Site)
		}
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileStore(bad).Get(context.Background(), mustGuildID(t, "903984074735338907")); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "guild-config.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer store.Close()

	testStore(t, store)
}

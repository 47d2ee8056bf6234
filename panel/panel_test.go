// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/guildconf"
	"github.com/moldova-rp/gatekeeper/lib/clock"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

type fakePlatform struct {
	mu       sync.Mutex
	nextID   int
	channels map[ref.ChannelID]*discord.Channel
	messages map[ref.ChannelID]map[ref.MessageID]*discord.Message
	edits    int
	creates  int

	getMessageErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels: make(map[ref.ChannelID]*discord.Channel),
		messages: make(map[ref.ChannelID]map[ref.MessageID]*discord.Message),
	}
}

func notFoundErr() error {
	return &discord.APIError{Code: discord.ErrCodeUnknownMessage, Message: "Unknown Message", StatusCode: 404}
}

func (f *fakePlatform) addChannel(t *testing.T, channelType discord.ChannelType) ref.ChannelID {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id, err := ref.ParseChannelID(fmt.Sprintf("20000000000000%04d", f.nextID))
	if err != nil {
		t.Fatalf("bad generated ID: %v", err)
	}
	f.channels[id] = &discord.Channel{ID: id, Type: channelType}
	f.messages[id] = make(map[ref.MessageID]*discord.Message)
	return id
}

func (f *fakePlatform) GetChannel(ctx context.Context, channelID ref.ChannelID) (*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	channel, ok := f.channels[channelID]
	if !ok {
		return nil, notFoundErr()
	}
	return channel, nil
}

func (f *fakePlatform) GetMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getMessageErr != nil {
		return nil, f.getMessageErr
	}
	message, ok := f.messages[channelID][messageID]
	if !ok {
		return nil, notFoundErr()
	}
	return message, nil
}

func (f *fakePlatform) CreateMessage(ctx context.Context, channelID ref.ChannelID, send discord.MessageSend) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, notFoundErr()
	}
	f.nextID++
	id, _ := ref.ParseMessageID(fmt.Sprintf("20000000000000%04d", f.nextID))
	message := &discord.Message{ID: id, ChannelID: channelID, Embeds: send.Embeds, Components: send.Components}
	f.messages[channelID][id] = message
	f.creates++
	return message, nil
}

func (f *fakePlatform) EditMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, edit discord.MessageEdit) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[channelID][messageID]
	if !ok {
		return nil, notFoundErr()
	}
	message.Embeds = edit.Embeds
	message.Components = edit.Components
	f.edits++
	return message, nil
}

func (f *fakePlatform) deleteMessage(channelID ref.ChannelID, messageID ref.MessageID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages[channelID], messageID)
}

func (f *fakePlatform) messageCount(channelID ref.ChannelID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages[channelID])
}

func newTestSync(t *testing.T) (*Synchronizer, *fakePlatform, guildconf.Store) {
	t.Helper()
	platform := newFakePlatform()
	store := guildconf.NewFileStore(filepath.Join(t.TempDir(), "guild-config.json"))
	syncer, err := NewSynchronizer(SynchronizerConfig{
		Platform: platform,
		Store:    store,
		Clock:    clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("NewSynchronizer failed: %v", err)
	}
	return syncer, platform, store
}

func mustGuildID(t *testing.T) ref.GuildID {
	t.Helper()
	id, err := ref.ParseGuildID("903984074735338907")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestEnsureNoChannelConfigured(t *testing.T) {
	syncer, platform, _ := newTestSync(t)
	if err := syncer.Ensure(context.Background(), mustGuildID(t)); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if platform.creates != 0 {
		t.Error("message created without a configured channel")
	}
}

func TestEnsureUnresolvableChannelIsSilent(t *testing.T) {
	syncer, _, store := newTestSync(t)
	guildID := mustGuildID(t)
	gone, err := ref.ParseChannelID("300000000000000001")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Set(context.Background(), guildID, guildconf.Patch{PanelChannelID: &gone}); err != nil {
		t.Fatal(err)
	}

	if err := syncer.Ensure(context.Background(), guildID); err != nil {
		t.Fatalf("Ensure should no-op on a missing channel, got %v", err)
	}
}

func TestEnsureIdempotent(t *testing.T) {
	syncer, platform, store := newTestSync(t)
	guildID := mustGuildID(t)
	channel := platform.addChannel(t, discord.ChannelTypeGuildText)
	if _, err := store.Set(context.Background(), guildID, guildconf.Patch{PanelChannelID: &channel}); err != nil {
		t.Fatal(err)
	}

	if err := syncer.Ensure(context.Background(), guildID); err != nil {
		t.Fatalf("first Ensure failed: %v", err)
	}
	if platform.messageCount(channel) != 1 {
		t.Fatalf("message count after first Ensure = %d", platform.messageCount(channel))
	}

	cfg, err := store.Get(context.Background(), guildID)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PanelMessageID.IsZero() {
		t.Fatal("message ID not persisted after creation")
	}

	if err := syncer.Ensure(context.Background(), guildID); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if platform.messageCount(channel) != 1 {
		t.Errorf("second Ensure created another message: count = %d", platform.messageCount(channel))
	}
	if platform.edits != 1 {
		t.Errorf("second Ensure should edit, edits = %d", platform.edits)
	}
}

func TestEnsureRecreatesDeletedMessage(t *testing.T) {
	syncer, platform, store := newTestSync(t)
	guildID := mustGuildID(t)
	channel := platform.addChannel(t, discord.ChannelTypeGuildText)
	if _, err := store.Set(context.Background(), guildID, guildconf.Patch{PanelChannelID: &channel}); err != nil {
		t.Fatal(err)
	}
	if err := syncer.Ensure(context.Background(), guildID); err != nil {
		t.Fatal(err)
	}

	cfg, _ := store.Get(context.Background(), guildID)
	platform.deleteMessage(channel, cfg.PanelMessageID)

	if err := syncer.Ensure(context.Background(), guildID); err != nil {
		t.Fatalf("Ensure after deletion failed: %v", err)
	}
	if platform.messageCount(channel) != 1 {
		t.Errorf("message count = %d, want 1", platform.messageCount(channel))
	}

	updated, _ := store.Get(context.Background(), guildID)
	if updated.PanelMessageID == cfg.PanelMessageID {
		t.Error("store still records the deleted message ID")
	}
}

func TestEnsureFetchFailureFallsThroughToCreation(t *testing.T) {
	syncer, platform, store := newTestSync(t)
	guildID := mustGuildID(t)
	channel := platform.addChannel(t, discord.ChannelTypeGuildText)
	if _, err := store.Set(context.Background(), guildID, guildconf.Patch{PanelChannelID: &channel}); err != nil {
		t.Fatal(err)
	}
	if err := syncer.Ensure(context.Background(), guildID); err != nil {
		t.Fatal(err)
	}

	// A fetch failure that is not a clean not-found still falls
	// through to creating a fresh message.
	platform.getMessageErr = &discord.APIError{
		Code: discord.ErrCodeMissingAccess, Message: "Missing Access", StatusCode: 403,
	}
	if err := syncer.Ensure(context.Background(), guildID); err != nil {
		t.Fatalf("Ensure with failing fetch: %v", err)
	}
	if platform.messageCount(channel) != 2 {
		t.Errorf("message count = %d, want a second message created", platform.messageCount(channel))
	}
	if platform.edits != 0 {
		t.Errorf("edits = %d, want 0", platform.edits)
	}
}

func TestEnsureChannelChangeCreatesFresh(t *testing.T) {
	syncer, platform, store := newTestSync(t)
	guildID := mustGuildID(t)
	first := platform.addChannel(t, discord.ChannelTypeGuildText)
	second := platform.addChannel(t, discord.ChannelTypeGuildText)

	ctx := context.Background()
	if _, err := store.Set(ctx, guildID, guildconf.Patch{PanelChannelID: &first}); err != nil {
		t.Fatal(err)
	}
	if err := syncer.Ensure(ctx, guildID); err != nil {
		t.Fatal(err)
	}

	// Retargeting clears the recorded message, so the next Ensure
	// creates in the new channel instead of editing the old one.
	if _, err := store.Set(ctx, guildID, guildconf.Patch{PanelChannelID: &second}); err != nil {
		t.Fatal(err)
	}
	if err := syncer.Ensure(ctx, guildID); err != nil {
		t.Fatal(err)
	}

	if platform.messageCount(second) != 1 {
		t.Errorf("new channel message count = %d, want 1", platform.messageCount(second))
	}
	if platform.edits != 0 {
		t.Errorf("old message edited across channel change, edits = %d", platform.edits)
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unset links render placeholders and no buttons", func(t *testing.T) {
		payload := Render(guildconf.Config{}, now)
		embed := payload.Embeds[0]
		if len(embed.Fields) != 6 {
			t.Fatalf("field count = %d, want 6", len(embed.Fields))
		}
		for _, field := range embed.Fields {
			if field.Value != notSet {
				t.Errorf("field %q = %q, want placeholder", field.Name, field.Value)
			}
		}
		if len(payload.Components) != 0 {
			t.Errorf("components = %d, want none", len(payload.Components))
		}
	})

	t.Run("set links get buttons in two rows", func(t *testing.T) {
		payload := Render(guildconf.Config{
			Site: "https://moldova-rp.md",
			Wiki: "https://wiki.moldova-rp.md",
		}, now)
		if len(payload.Components) != 2 {
			t.Fatalf("row count = %d, want 2", len(payload.Components))
		}
		for _, row := range payload.Components {
			if len(row.Components) != 1 {
				t.Errorf("row button count = %d, want 1", len(row.Components))
			}
			button := row.Components[0]
			if button.URL == "" || button.CustomID != "" {
				t.Errorf("expected link button, got %+v", button)
			}
		}
	})

	t.Run("unsafe URLs dropped", func(t *testing.T) {
		payload := Render(guildconf.Config{
			Site:     "javascript:alert(1)",
			Panel:    "moldova-rp.md",
			ThumbURL: "ftp://x",
		}, now)
		embed := payload.Embeds[0]
		for _, field := range embed.Fields {
			if strings.Contains(field.Value, "javascript") || strings.Contains(field.Value, "Deschide") {
				t.Errorf("unsafe URL rendered: %q", field.Value)
			}
		}
		if embed.Thumbnail != nil {
			t.Error("non-http thumbnail rendered")
		}
		if len(payload.Components) != 0 {
			t.Error("buttons created for unsafe URLs")
		}
	})
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.md", "https://example.md"},
		{"http://example.md", "http://example.md"},
		{"  https://example.md  ", "https://example.md"},
		{"HTTPS://EXAMPLE.MD", "HTTPS://EXAMPLE.MD"},
		{"", ""},
		{"https://", ""},
		{"javascript:alert(1)", ""},
		{"example.md", ""},
	}
	for _, test := range tests {
		if got := safeURL(test.in); got != test.want {
			t.Errorf("safeURL(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

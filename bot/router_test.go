// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/guildconf"
	"github.com/moldova-rp/gatekeeper/lib/clock"
	"github.com/moldova-rp/gatekeeper/lib/ref"
	"github.com/moldova-rp/gatekeeper/panel"
	"github.com/moldova-rp/gatekeeper/workflow"
)

// fakePlatform backs the router, the workflow engine, and the panel
// synchronizer in one in-memory Discord.
type fakePlatform struct {
	mu        sync.Mutex
	nextID    int
	channels  map[ref.ChannelID]*discord.Channel
	messages  map[ref.ChannelID][]*discord.Message
	dms       map[ref.UserID]ref.ChannelID
	roles     map[ref.RoleID]bool
	members   map[ref.UserID]*discord.Member
	responses []discord.InteractionResponse
	followups []discord.InteractionResponseData
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels: make(map[ref.ChannelID]*discord.Channel),
		messages: make(map[ref.ChannelID][]*discord.Message),
		dms:      make(map[ref.UserID]ref.ChannelID),
		roles:    make(map[ref.RoleID]bool),
		members:  make(map[ref.UserID]*discord.Member),
	}
}

func (f *fakePlatform) newID() string {
	f.nextID++
	return fmt.Sprintf("40000000000000%04d", f.nextID)
}

func notFoundErr() error {
	return &discord.APIError{Code: discord.ErrCodeUnknownChannel, Message: "Unknown Channel", StatusCode: 404}
}

func (f *fakePlatform) addChannel(t *testing.T, guildID ref.GuildID, channelType discord.ChannelType) ref.ChannelID {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := ref.ParseChannelID(f.newID())
	if err != nil {
		t.Fatalf("bad generated ID: %v", err)
	}
	f.channels[id] = &discord.Channel{ID: id, GuildID: guildID, Type: channelType}
	return id
}

func (f *fakePlatform) RespondToInteraction(ctx context.Context, interactionID, token string, response discord.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response)
	return nil
}

func (f *fakePlatform) CreateGuildChannel(ctx context.Context, guildID ref.GuildID, request discord.CreateChannelRequest, auditReason string) (*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := ref.ParseChannelID(f.newID())
	channel := &discord.Channel{ID: id, GuildID: guildID, Type: request.Type, Name: request.Name, ParentID: request.ParentID}
	f.channels[id] = channel
	return channel, nil
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

func (f *fakePlatform) DeleteChannel(ctx context.Context, channelID ref.ChannelID, auditReason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return notFoundErr()
	}
	delete(f.channels, channelID)
	return nil
}

func (f *fakePlatform) CreateMessage(ctx context.Context, channelID ref.ChannelID, send discord.MessageSend) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, notFoundErr()
	}
	id, _ := ref.ParseMessageID(f.newID())
	message := &discord.Message{
		ID:         id,
		ChannelID:  channelID,
		Content:    send.Content,
		Embeds:     send.Embeds,
		Components: send.Components,
	}
	f.messages[channelID] = append(f.messages[channelID], message)
	return message, nil
}

func (f *fakePlatform) EditMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, edit discord.MessageEdit) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, message := range f.messages[channelID] {
		if message.ID == messageID {
			message.Content = edit.Content
			message.Embeds = edit.Embeds
			message.Components = edit.Components
			return message, nil
		}
	}
	return nil, notFoundErr()
}

func (f *fakePlatform) GetMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, message := range f.messages[channelID] {
		if message.ID == messageID {
			return message, nil
		}
	}
	return nil, notFoundErr()
}

func (f *fakePlatform) CreateDM(ctx context.Context, userID ref.UserID) (*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.dms[userID]
	if !ok {
		parsed, _ := ref.ParseChannelID(f.newID())
		f.channels[parsed] = &discord.Channel{ID: parsed, Type: discord.ChannelTypeDM}
		f.dms[userID] = parsed
		id = parsed
	}
	return f.channels[id], nil
}

func (f *fakePlatform) GetGuildMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*discord.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[userID]
	if !ok {
		return nil, &discord.APIError{Code: discord.ErrCodeUnknownMember, Message: "Unknown Member", StatusCode: 404}
	}
	return member, nil
}

func (f *fakePlatform) CreateFollowupMessage(ctx context.Context, applicationID, token string, data discord.InteractionResponseData) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	id, _ := ref.ParseMessageID(f.newID())
	return &discord.Message{ID: id, Content: data.Content}, nil
}

func (f *fakePlatform) GuildHasRole(ctx context.Context, guildID ref.GuildID, roleID ref.RoleID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[roleID], nil
}

func (f *fakePlatform) lastResponse(t *testing.T) discord.InteractionResponse {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		t.Fatal("no interaction response recorded")
	}
	return f.responses[len(f.responses)-1]
}

func (f *fakePlatform) lastFollowup(t *testing.T) discord.InteractionResponseData {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.followups) == 0 {
		t.Fatal("no followup message recorded")
	}
	return f.followups[len(f.followups)-1]
}

func (f *fakePlatform) messagesIn(channelID ref.ChannelID) []*discord.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discord.Message(nil), f.messages[channelID]...)
}

// testEnv wires a Router over real engine, registry, synchronizer,
// and store, all against one fakePlatform.
type testEnv struct {
	router   *Router
	platform *fakePlatform
	store    guildconf.Store

	guild         ref.GuildID
	staffRole     ref.RoleID
	policeRole    ref.RoleID
	category      ref.ChannelID
	reviewChannel ref.ChannelID
	applicant     ref.UserID
}

func mustParse[T any](t *testing.T, parse func(string) (T, error), raw string) T {
	t.Helper()
	value, err := parse(raw)
	if err != nil {
		t.Fatalf("parsing %q: %v", raw, err)
	}
	return value
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	platform := newFakePlatform()

	env := &testEnv{
		platform:   platform,
		guild:      mustParse(t, ref.ParseGuildID, "300000000000000001"),
		staffRole:  mustParse(t, ref.ParseRoleID, "300000000000000002"),
		policeRole: mustParse(t, ref.ParseRoleID, "300000000000000003"),
		applicant:  mustParse(t, ref.ParseUserID, "300000000000000004"),
	}
	env.category = platform.addChannel(t, env.guild, discord.ChannelTypeGuildCategory)
	env.reviewChannel = platform.addChannel(t, env.guild, discord.ChannelTypeGuildText)
	platform.roles[env.staffRole] = true
	platform.roles[env.policeRole] = true

	bot := mustParse(t, ref.ParseUserID, "300000000000000005")
	platform.members[bot] = &discord.Member{User: &discord.User{ID: bot, Username: "gatekeeper", Bot: true}}

	registry, err := department.NewRegistry(map[department.Key]department.Wiring{
		department.Police: {Role: env.policeRole, ReviewChannel: env.reviewChannel},
	})
	if err != nil {
		t.Fatal(err)
	}

	fakeClock := clock.Fake(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	engine, err := workflow.NewEngine(workflow.EngineConfig{
		Platform:             platform,
		Registry:             registry,
		Guild:                env.guild,
		StaffRole:            env.staffRole,
		ApplicationsCategory: env.category,
		Bot:                  bot,
		Clock:                fakeClock,
	})
	if err != nil {
		t.Fatal(err)
	}

	env.store = guildconf.NewFileStore(filepath.Join(t.TempDir(), "guild-config.json"))
	synchronizer, err := panel.NewSynchronizer(panel.SynchronizerConfig{
		Platform: platform,
		Store:    env.store,
		Clock:    fakeClock,
	})
	if err != nil {
		t.Fatal(err)
	}

	env.router, err = NewRouter(Config{
		Platform: platform,
		Engine:   engine,
		Registry: registry,
		Panel:    synchronizer,
		Store:    env.store,
		Guild:    env.guild,
		Clock:    fakeClock,
	})
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func (env *testEnv) member(admin bool, roles ...ref.RoleID) *discord.Member {
	member := &discord.Member{
		User:  &discord.User{ID: env.applicant, Username: "ion.vasile"},
		Roles: roles,
	}
	if admin {
		member.Permissions = discord.PermissionAdministrator
	}
	return member
}

func answersData(answers map[string]string) *discord.InteractionData {
	data := &discord.InteractionData{CustomID: "apply:police"}
	for field, value := range answers {
		input := discord.Component{Type: discord.ComponentTextInput, CustomID: field, Value: value}
		data.Components = append(data.Components, discord.NewActionRow(input))
	}
	return data
}

func validAnswers() map[string]string {
	return map[string]string{
		workflow.FieldNameAge:    "Ion, 21",
		workflow.FieldExperience: "2 ani pe alte servere",
		workflow.FieldSchedule:   "seara, 4 ore",
		workflow.FieldMotivation: "vreau să ajut comunitatea",
		workflow.FieldContact:    "1234567",
	}
}

func TestApplyCommandOpensModal(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionCommand,
		GuildID: env.guild,
		Member:  env.member(false),
		Data: &discord.InteractionData{
			Name:    "apply",
			Options: []discord.InteractionOption{{Name: "department", Type: 3, Value: "police"}},
		},
	})

	response := env.platform.lastResponse(t)
	if response.Type != discord.ResponseModal {
		t.Fatalf("response type = %d, want modal", response.Type)
	}
	if response.Data.CustomID != "apply:police" {
		t.Errorf("modal custom ID = %q", response.Data.CustomID)
	}
	if response.Data.Title != "Aplicație Poliție" {
		t.Errorf("modal title = %q", response.Data.Title)
	}
	if len(response.Data.Components) != len(workflow.FieldOrder) {
		t.Fatalf("modal rows = %d, want %d", len(response.Data.Components), len(workflow.FieldOrder))
	}
	contact := response.Data.Components[len(response.Data.Components)-1].Components[0]
	if contact.CustomID != workflow.FieldContact || contact.MinLength != 7 || contact.MaxLength != 7 {
		t.Errorf("contact input = %+v", contact)
	}
}

func TestModalSubmitRunsWorkflow(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:            "i1",
		ApplicationID: "300000000000000005",
		Type:          discord.InteractionModalSubmit,
		GuildID:       env.guild,
		Member:        env.member(false),
		Data:          answersData(validAnswers()),
	})

	response := env.platform.lastResponse(t)
	if response.Type != discord.ResponseDeferredMessage {
		t.Fatalf("acknowledgement type = %d, want deferred", response.Type)
	}
	if response.Data.Flags&discord.MessageFlagEphemeral == 0 {
		t.Error("acknowledgement should be ephemeral")
	}

	followup := env.platform.lastFollowup(t)
	if !strings.Contains(followup.Content, "✅") {
		t.Errorf("followup = %q", followup.Content)
	}
	if followup.Flags&discord.MessageFlagEphemeral == 0 {
		t.Error("followup should be ephemeral")
	}

	entries := env.platform.messagesIn(env.reviewChannel)
	if len(entries) != 2 {
		t.Fatalf("review channel messages = %d, want entry plus alert", len(entries))
	}
}

func TestModalSubmitValidationError(t *testing.T) {
	env := newTestEnv(t)

	answers := validAnswers()
	answers[workflow.FieldContact] = "12ab567"
	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:            "i1",
		ApplicationID: "300000000000000005",
		Type:          discord.InteractionModalSubmit,
		GuildID:       env.guild,
		Member:        env.member(false),
		Data:          answersData(answers),
	})

	followup := env.platform.lastFollowup(t)
	if !strings.Contains(followup.Content, "exact 7 cifre") {
		t.Errorf("error reply = %q", followup.Content)
	}
	if followup.Flags&discord.MessageFlagEphemeral == 0 {
		t.Error("error reply should be ephemeral")
	}
	if len(env.platform.messagesIn(env.reviewChannel)) != 0 {
		t.Error("rejected submission should publish nothing")
	}
}

func TestDecisionButton(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionModalSubmit,
		GuildID: env.guild,
		Member:  env.member(false),
		Data:    answersData(validAnswers()),
	})
	entry := env.platform.messagesIn(env.reviewChannel)[0]

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i2",
		Type:    discord.InteractionComponent,
		GuildID: env.guild,
		Member:  env.member(false, env.staffRole),
		Message: entry,
		Data:    &discord.InteractionData{CustomID: "accept:police:" + env.applicant.String()},
	})

	response := env.platform.lastResponse(t)
	if !strings.Contains(response.Data.Content, "acceptată") {
		t.Errorf("decision ack = %q", response.Data.Content)
	}

	decided := env.platform.messagesIn(env.reviewChannel)[0]
	var status string
	for _, field := range decided.Embeds[0].Fields {
		if field.Name == "Status" {
			status = field.Value
		}
	}
	if status != "ACCEPTED" {
		t.Errorf("entry status = %q", status)
	}
}

func TestDecisionButtonUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionModalSubmit,
		GuildID: env.guild,
		Member:  env.member(false),
		Data:    answersData(validAnswers()),
	})
	entry := env.platform.messagesIn(env.reviewChannel)[0]

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i2",
		Type:    discord.InteractionComponent,
		GuildID: env.guild,
		Member:  env.member(false),
		Message: entry,
		Data:    &discord.InteractionData{CustomID: "reject:police:" + env.applicant.String()},
	})

	response := env.platform.lastResponse(t)
	if !strings.Contains(response.Data.Content, "Nu ai permisiunea") {
		t.Errorf("unauthorized reply = %q", response.Data.Content)
	}
}

func TestSetRequiresAdministrator(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionCommand,
		GuildID: env.guild,
		Member:  env.member(false),
		Data: &discord.InteractionData{
			Name: "set",
			Options: []discord.InteractionOption{{
				Name: "site", Type: int(discord.OptionSubCommand),
				Options: []discord.InteractionOption{{Name: "url", Value: "https://example.ro"}},
			}},
		},
	})

	response := env.platform.lastResponse(t)
	if !strings.Contains(response.Data.Content, "Nu ai permisiunea") {
		t.Errorf("reply = %q", response.Data.Content)
	}
	cfg, _ := env.store.Get(context.Background(), env.guild)
	if cfg.Site != "" {
		t.Errorf("site stored despite missing permission: %q", cfg.Site)
	}
}

func TestSetSitePersistsAndAcks(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionCommand,
		GuildID: env.guild,
		Member:  env.member(true),
		Data: &discord.InteractionData{
			Name: "set",
			Options: []discord.InteractionOption{{
				Name: "site", Type: int(discord.OptionSubCommand),
				Options: []discord.InteractionOption{{Name: "url", Value: "https://moldova.example.ro"}},
			}},
		},
	})

	response := env.platform.lastResponse(t)
	if !strings.Contains(response.Data.Content, "✅") {
		t.Errorf("reply = %q", response.Data.Content)
	}
	cfg, err := env.store.Get(context.Background(), env.guild)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Site != "https://moldova.example.ro" {
		t.Errorf("stored site = %q", cfg.Site)
	}
}

func TestSetChannelPublishesPanel(t *testing.T) {
	env := newTestEnv(t)
	panelChannel := env.platform.addChannel(t, env.guild, discord.ChannelTypeGuildText)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionCommand,
		GuildID: env.guild,
		Member:  env.member(true),
		Data: &discord.InteractionData{
			Name: "set",
			Options: []discord.InteractionOption{{
				Name: "channel", Type: int(discord.OptionSubCommand),
				Options: []discord.InteractionOption{{Name: "channel", Type: int(discord.OptionChannel), Value: panelChannel.String()}},
			}},
		},
	})

	if got := len(env.platform.messagesIn(panelChannel)); got != 1 {
		t.Fatalf("panel channel messages = %d, want 1", got)
	}
	cfg, _ := env.store.Get(context.Background(), env.guild)
	if cfg.PanelChannelID != panelChannel {
		t.Errorf("stored panel channel = %s", cfg.PanelChannelID)
	}
	if cfg.PanelMessageID.IsZero() {
		t.Error("panel message ID not recorded")
	}
}

func TestSetChannelRejectsCategory(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionCommand,
		GuildID: env.guild,
		Member:  env.member(true),
		Data: &discord.InteractionData{
			Name: "set",
			Options: []discord.InteractionOption{{
				Name: "channel", Type: int(discord.OptionSubCommand),
				Options: []discord.InteractionOption{{Name: "channel", Type: int(discord.OptionChannel), Value: env.category.String()}},
			}},
		},
	})

	response := env.platform.lastResponse(t)
	if !strings.Contains(response.Data.Content, "Canal invalid") {
		t.Errorf("reply = %q", response.Data.Content)
	}
	cfg, _ := env.store.Get(context.Background(), env.guild)
	if !cfg.PanelChannelID.IsZero() {
		t.Error("invalid channel was stored")
	}
}

func TestLinksCommand(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.store.Set(context.Background(), env.guild, guildconf.Patch{
		Site: guildconf.StringPatch("https://moldova.example.ro"),
	}); err != nil {
		t.Fatal(err)
	}

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionCommand,
		GuildID: env.guild,
		Member:  env.member(false),
		Data:    &discord.InteractionData{Name: "links"},
	})

	response := env.platform.lastResponse(t)
	if response.Data.Flags&discord.MessageFlagEphemeral == 0 {
		t.Error("links reply should be ephemeral")
	}
	if len(response.Data.Embeds) != 1 {
		t.Fatalf("links embeds = %d", len(response.Data.Embeds))
	}
	if response.Data.Embeds[0].Title != "Linkuri Oficiale" {
		t.Errorf("links title = %q", response.Data.Embeds[0].Title)
	}
}

func TestReadySyncsPanel(t *testing.T) {
	env := newTestEnv(t)
	panelChannel := env.platform.addChannel(t, env.guild, discord.ChannelTypeGuildText)
	if _, err := env.store.Set(context.Background(), env.guild, guildconf.Patch{
		PanelChannelID: &panelChannel,
	}); err != nil {
		t.Fatal(err)
	}

	env.router.HandleEvent(context.Background(), "READY", json.RawMessage(`{}`))

	if got := len(env.platform.messagesIn(panelChannel)); got != 1 {
		t.Fatalf("panel channel messages = %d, want 1", got)
	}
}

func TestForeignGuildIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.router.HandleInteraction(context.Background(), &discord.Interaction{
		ID:      "i1",
		Type:    discord.InteractionCommand,
		GuildID: mustParse(t, ref.ParseGuildID, "39999999999999999"),
		Member:  env.member(true),
		Data:    &discord.InteractionData{Name: "links"},
	})

	if len(env.platform.responses) != 0 {
		t.Fatalf("responses = %d, want none", len(env.platform.responses))
	}
}

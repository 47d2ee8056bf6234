// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

// Package panel keeps one "official links" message per guild in sync
// with the guild's stored configuration: rendering the embed and link
// buttons from the config, and creating or editing the message in the
// configured channel.
package panel

import (
	"strings"
	"time"

	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/guildconf"
)

const (
	panelColor = 0xFF7A00
	notSet     = "❌ Nesetat"
)

// Payload is a rendered panel, usable both as the synchronized panel
// message and as a direct command reply.
type Payload struct {
	Embeds     []discord.Embed
	Components []discord.Component
}

// Render builds the panel from a guild's configuration. Pure: the only
// inputs are the config and the timestamp for the footer. Links that
// are unset or not plausible http(s) URLs render as placeholders and
// get no button.
func Render(cfg guildconf.Config, now time.Time) Payload {
	links := []struct {
		name  string
		label string
		url   string
	}{
		{"🌐 Site", "🌐 Site", safeURL(cfg.Site)},
		{"🧩 Panel", "🧩 Panel", safeURL(cfg.Panel)},
		{"💬 Discord", "💬 Discord", safeURL(cfg.Discord)},
		{"📘 Wiki", "📘 Wiki", safeURL(cfg.Wiki)},
		{"📜 Regulament", "📜 Regulament", safeURL(cfg.Rules)},
		{"❤️ Donații", "💸 Donații", safeURL(cfg.Donate)},
	}

	embed := discord.Embed{
		Title:       "Linkuri Oficiale",
		Description: "Accesează rapid informațiile serverului folosind butoanele de mai jos.",
		Color:       panelColor,
		Author:      &discord.EmbedAuthor{Name: "Moldova Roleplay", IconURL: safeURL(cfg.ThumbURL)},
		Footer:      &discord.EmbedFooter{Text: "Actualizat • " + now.Format("02.01.2006 15:04")},
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
	if thumb := safeURL(cfg.ThumbURL); thumb != "" {
		embed.Thumbnail = &discord.EmbedMedia{URL: thumb}
	}
	if banner := safeURL(cfg.BannerURL); banner != "" {
		embed.Image = &discord.EmbedMedia{URL: banner}
	}

	for _, link := range links {
		value := notSet
		if link.url != "" {
			value = "[Deschide](" + link.url + ")"
		}
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: link.name, Value: value, Inline: true})
	}

	// Two rows of link buttons, three slots each, skipping unset links
	// and dropping empty rows entirely.
	var components []discord.Component
	for _, half := range [][]int{{0, 1, 2}, {3, 4, 5}} {
		var buttons []discord.Component
		for _, index := range half {
			if links[index].url != "" {
				buttons = append(buttons, discord.NewLinkButton(links[index].label, links[index].url))
			}
		}
		if len(buttons) > 0 {
			components = append(components, discord.NewActionRow(buttons...))
		}
	}

	return Payload{Embeds: []discord.Embed{embed}, Components: components}
}

// safeURL returns the trimmed URL if it plausibly points at an http(s)
// resource, else the empty string. Everything else (javascript:, bare
// hosts, garbage) is dropped rather than rendered into a button.
func safeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") && len(trimmed) > len("http://") {
		return trimmed
	}
	if strings.HasPrefix(lower, "https://") && len(trimmed) > len("https://") {
		return trimmed
	}
	return ""
}

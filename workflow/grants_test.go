// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"reflect"
	"testing"

	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

func TestGrants(t *testing.T) {
	guild := mustParse(t, ref.ParseGuildID, "903984074735338907")
	applicant := mustParse(t, ref.ParseUserID, "201851101770743809")
	staffRole := mustParse(t, ref.ParseRoleID, "903984074735339001")
	deptRole := mustParse(t, ref.ParseRoleID, "903984074735339002")
	bot := mustParse(t, ref.ParseUserID, "201851101770743999")

	withRole := department.Department{Key: department.Police, Role: deptRole}
	withoutRole := department.Department{Key: department.Medic}

	byID := func(overwrites []discord.PermissionOverwrite, id string) (discord.PermissionOverwrite, bool) {
		for _, overwrite := range overwrites {
			if overwrite.ID == id {
				return overwrite, true
			}
		}
		return discord.PermissionOverwrite{}, false
	}

	t.Run("fixed policy", func(t *testing.T) {
		overwrites := Grants(guild, applicant, withRole, staffRole, bot)
		if len(overwrites) != 5 {
			t.Fatalf("got %d overwrites, want 5", len(overwrites))
		}

		everyone, ok := byID(overwrites, guild.String())
		if !ok {
			t.Fatal("no @everyone overwrite")
		}
		if everyone.Allow != 0 || !everyone.Deny.Has(discord.PermissionViewChannel) {
			t.Errorf("@everyone overwrite = %+v", everyone)
		}

		member, ok := byID(overwrites, applicant.String())
		if !ok {
			t.Fatal("no applicant overwrite")
		}
		for _, perm := range []discord.Permissions{
			discord.PermissionViewChannel,
			discord.PermissionSendMessages,
			discord.PermissionReadMessageHistory,
			discord.PermissionAttachFiles,
			discord.PermissionEmbedLinks,
		} {
			if !member.Allow.Has(perm) {
				t.Errorf("applicant missing permission %s", perm)
			}
		}
		if member.Allow.Has(discord.PermissionManageMessages) {
			t.Error("applicant granted message management")
		}

		for _, roleID := range []ref.RoleID{deptRole, staffRole} {
			reviewer, ok := byID(overwrites, roleID.String())
			if !ok {
				t.Fatalf("no overwrite for role %s", roleID)
			}
			if !reviewer.Allow.Has(discord.PermissionManageMessages) || !reviewer.Allow.Has(discord.PermissionViewChannel) {
				t.Errorf("reviewer overwrite for %s = %+v", roleID, reviewer)
			}
			if reviewer.Allow.Has(discord.PermissionManageChannels) {
				t.Errorf("role %s granted channel management", roleID)
			}
		}

		botOverwrite, ok := byID(overwrites, bot.String())
		if !ok {
			t.Fatal("no bot overwrite")
		}
		if !botOverwrite.Allow.Has(discord.PermissionManageChannels) {
			t.Error("bot missing channel management (cleanup cannot delete)")
		}
	})

	t.Run("department without role", func(t *testing.T) {
		overwrites := Grants(guild, applicant, withoutRole, staffRole, bot)
		if len(overwrites) != 4 {
			t.Fatalf("got %d overwrites, want 4", len(overwrites))
		}
		if _, ok := byID(overwrites, deptRole.String()); ok {
			t.Error("department role overwrite present for role-less department")
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		first := Grants(guild, applicant, withRole, staffRole, bot)
		second := Grants(guild, applicant, withRole, staffRole, bot)
		if !reflect.DeepEqual(first, second) {
			t.Error("repeated calls differ")
		}
	})
}

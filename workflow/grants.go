// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"github.com/moldova-rp/gatekeeper/department"
	"github.com/moldova-rp/gatekeeper/discord"
	"github.com/moldova-rp/gatekeeper/lib/ref"
)

// applicantGrant is what the applicant can do in their own application
// channel: talk, read back, and attach evidence.
const applicantGrant = discord.PermissionViewChannel |
	discord.PermissionSendMessages |
	discord.PermissionReadMessageHistory |
	discord.PermissionAttachFiles |
	discord.PermissionEmbedLinks

// reviewerGrant is the department-role and staff-role set: view, talk,
// read back, plus moderation of the channel.
const reviewerGrant = discord.PermissionViewChannel |
	discord.PermissionSendMessages |
	discord.PermissionReadMessageHistory |
	discord.PermissionManageMessages

// Grants computes the permission overwrites for a private application
// channel. Pure and deterministic: same inputs, same list, same order.
//
// Policy: @everyone is denied view; the applicant gets applicantGrant;
// the department role (when the department has one) and the staff role
// get reviewerGrant; the bot gets reviewerGrant plus channel
// management, which the retention cleanup needs for deletion.
func Grants(guildID ref.GuildID, applicant ref.UserID, dept department.Department, staffRole ref.RoleID, bot ref.UserID) []discord.PermissionOverwrite {
	overwrites := []discord.PermissionOverwrite{
		discord.RoleOverwrite(ref.EveryoneRole(guildID), 0, discord.PermissionViewChannel),
		discord.MemberOverwrite(applicant, applicantGrant, 0),
	}
	if !dept.Role.IsZero() {
		overwrites = append(overwrites, discord.RoleOverwrite(dept.Role, reviewerGrant, 0))
	}
	overwrites = append(overwrites,
		discord.RoleOverwrite(staffRole, reviewerGrant, 0),
		discord.MemberOverwrite(bot, reviewerGrant|discord.PermissionManageChannels, 0),
	)
	return overwrites
}

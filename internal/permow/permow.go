// Package permow computes the permission-overwrite list a newly built
// voice channel is created with.
package permow

import "github.com/bwmarrin/discordgo"

// FullAccess builds an overwrite granting every permission bit to the
// given member, denying none.
func FullAccess(memberID string) *discordgo.PermissionOverwrite {
	return &discordgo.PermissionOverwrite{
		ID:    memberID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: discordgo.PermissionAll,
		Deny:  0,
	}
}

// Merge concatenates the overwrite sources for a new channel in the order
// the platform resolves them: the parent category's inherited overwrites,
// then the preset's, then a full-access grant for the requester, then a
// full-access grant for the bot itself. Later entries win for a given
// subject, so the bot's own access can never be clobbered by category or
// preset data. The relative order within each source list is preserved.
//
// Merge is pure: it never mutates its inputs and performs no I/O.
func Merge(category, preset []*discordgo.PermissionOverwrite, requesterID, botID string) []*discordgo.PermissionOverwrite {
	merged := make([]*discordgo.PermissionOverwrite, 0, len(category)+len(preset)+2)
	merged = append(merged, category...)
	merged = append(merged, preset...)
	merged = append(merged, FullAccess(requesterID), FullAccess(botID))
	return merged
}

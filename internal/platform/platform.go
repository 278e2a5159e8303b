// Package platform abstracts the chat platform operations the bot core
// needs, so the builder and the reaper can be driven against a fake in
// tests and never have to sniff REST error strings.
package platform

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrNotFound is returned when the target channel no longer exists.
// Deleting an already-deleted channel surfaces this and callers treat it
// as a benign no-op.
var ErrNotFound = errors.New("platform: not found")

// ErrNotConnectedToVoice is returned by MoveMember when the target user
// has no voice presence to move.
var ErrNotConnectedToVoice = errors.New("platform: target user is not connected to voice")

// Channel is an immutable snapshot of a guild channel, fetched fresh at
// each decision point.
type Channel struct {
	ID         string
	GuildID    string
	Name       string
	ParentID   string
	Bitrate    int
	UserLimit  int
	Overwrites []*discordgo.PermissionOverwrite
	Voice      bool
}

// Category is a snapshot of a channel's parent category.
type Category struct {
	ID         string
	Name       string
	Overwrites []*discordgo.PermissionOverwrite
}

// MessageRef is a handle to a sent message, kept for later editing.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// CreateVoiceChannelRequest carries everything the platform needs to
// create a voice channel. UserLimit zero means unlimited.
type CreateVoiceChannelRequest struct {
	Name       string
	ParentID   string
	Overwrites []*discordgo.PermissionOverwrite
	Bitrate    int
	UserLimit  int
}

// Client is the set of chat platform operations the core issues.
type Client interface {
	CreateVoiceChannel(ctx context.Context, guildID string, req CreateVoiceChannelRequest) (*Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	Channel(ctx context.Context, channelID string) (*Channel, error)
	ChannelMembers(ctx context.Context, guildID, channelID string) ([]string, error)
	MoveMember(ctx context.Context, guildID, userID, channelID string) error
	SendMessage(ctx context.Context, channelID, content string) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, content string) error
	ChannelCategory(ctx context.Context, channelID string) (*Category, error)
}

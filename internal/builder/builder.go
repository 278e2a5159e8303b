// Package builder creates temporary voice channels from a request,
// applying stored presets and the permission merge rules.
package builder

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/RYGhub/bobbot/internal/boberr"
	"github.com/RYGhub/bobbot/internal/permow"
	"github.com/RYGhub/bobbot/internal/platform"
	"github.com/RYGhub/bobbot/internal/storage"
)

// DefaultBitrate is used when the request resolves no preset.
const DefaultBitrate = 64000

// BuildRequest carries everything needed to build one channel. Category
// is the category the channel should be created under, nil for none.
type BuildRequest struct {
	GuildID     string
	Name        string
	RequesterID string
	Category    *platform.Category
	PresetName  string
}

type Builder struct {
	client  platform.Client
	store   *storage.Store
	logger  *zap.Logger
	botID   string
	bitrate int
}

func New(client platform.Client, store *storage.Store, logger *zap.Logger, botID string, defaultBitrate int) *Builder {
	if defaultBitrate <= 0 {
		defaultBitrate = DefaultBitrate
	}
	return &Builder{
		client:  client,
		store:   store,
		logger:  logger,
		botID:   botID,
		bitrate: defaultBitrate,
	}
}

// Build creates the voice channel, marks it for reaping, and moves the
// requester into it. A failed marker write or a failed move leaves the
// created channel in place.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*platform.Channel, error) {
	var preset *storage.PresetData
	if req.PresetName != "" {
		var err error
		preset, err = b.store.GetPreset(ctx, req.GuildID, req.PresetName)
		if err != nil {
			return nil, boberr.Wrap(boberr.KindInternal, err, "Couldn't read the preset.")
		}
		if preset == nil {
			return nil, boberr.User("There is no preset named _%s_ in this server.", req.PresetName)
		}
	}

	create := platform.CreateVoiceChannelRequest{
		Name:    req.Name,
		Bitrate: b.bitrate,
	}
	var categoryOverwrites []*discordgo.PermissionOverwrite
	if req.Category != nil {
		create.ParentID = req.Category.ID
		categoryOverwrites = req.Category.Overwrites
	}
	var presetOverwrites []*discordgo.PermissionOverwrite
	if preset != nil {
		// Old payloads may carry no bitrate at all; keep the default then.
		if preset.Bitrate > 0 {
			create.Bitrate = preset.Bitrate
		}
		if preset.UserLimit != nil {
			create.UserLimit = *preset.UserLimit
		}
		presetOverwrites = preset.Overwrites
	}
	create.Overwrites = permow.Merge(categoryOverwrites, presetOverwrites, req.RequesterID, b.botID)

	channel, err := b.client.CreateVoiceChannel(ctx, req.GuildID, create)
	if err != nil {
		return nil, boberr.Wrap(boberr.KindAdmin, err, "Couldn't create the voice channel.")
	}
	b.logger.Info("built channel",
		zap.String("guild_id", req.GuildID),
		zap.String("channel_id", channel.ID),
		zap.String("name", req.Name))

	if err := b.store.MarkCreatedByBot(ctx, req.GuildID, channel.ID); err != nil {
		// The channel exists but will never be auto-reaped. Degraded,
		// not fatal.
		b.logger.Error("failed to mark created channel",
			zap.String("guild_id", req.GuildID),
			zap.String("channel_id", channel.ID),
			zap.Error(err))
	}

	if err := b.client.MoveMember(ctx, req.GuildID, req.RequesterID, channel.ID); err != nil {
		// The channel stays up either way. Not being in voice is the
		// requester's mistake, anything else is an operational problem.
		if errors.Is(err, platform.ErrNotConnectedToVoice) {
			return channel, boberr.User("You must be connected to voice to be moved into the new channel.")
		}
		return channel, boberr.Wrap(boberr.KindAdmin, err, "Couldn't move you into the new channel.")
	}

	return channel, nil
}

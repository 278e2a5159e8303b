// Package reaper watches for bot-built voice channels becoming empty
// and deletes them after an announced grace period, re-checking
// emptiness before the delete so rejoins are honoured.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/RYGhub/bobbot/internal/boberr"
	"github.com/RYGhub/bobbot/internal/platform"
	"github.com/RYGhub/bobbot/internal/storage"
)

// DefaultGrace applies when a guild has not configured a deletion time.
const DefaultGrace = 60 * time.Second

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

type realTimer struct{ t *time.Timer }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (t realTimer) Stop() bool { return t.t.Stop() }

type Reaper struct {
	client platform.Client
	store  *storage.Store
	logger *zap.Logger
	clock  Clock
	grace  time.Duration
}

func New(client platform.Client, store *storage.Store, logger *zap.Logger, defaultGrace time.Duration) *Reaper {
	if defaultGrace <= 0 {
		defaultGrace = DefaultGrace
	}
	return &Reaper{
		client: client,
		store:  store,
		logger: logger,
		clock:  realClock{},
		grace:  defaultGrace,
	}
}

func (r *Reaper) WithClock(clock Clock) {
	r.clock = clock
}

// LeftChannel reports the channel a user just left, if the transition
// between the two voice states describes leaving one.
func LeftChannel(old, current *discordgo.VoiceState) (string, bool) {
	if old == nil || old.ChannelID == "" {
		return "", false
	}
	if current != nil && current.ChannelID == old.ChannelID {
		return "", false
	}
	return old.ChannelID, true
}

// Sweep runs one deletion pipeline for a channel someone just left.
// Paths where there is nothing to do (unmarked channel, someone still
// inside, channel already gone) return nil; only configuration and
// platform failures are errors. Concurrent sweeps for the same channel
// are tolerated because emptiness is re-checked right before the
// delete.
func (r *Reaper) Sweep(ctx context.Context, guildID, channelID string) error {
	log := r.logger.With(zap.String("guild_id", guildID), zap.String("channel_id", channelID))

	channel, err := r.client.Channel(ctx, channelID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			log.Debug("channel already gone, nothing to sweep")
			return nil
		}
		return boberr.Wrap(boberr.KindPlatform, err, "fetching the channel")
	}

	marked, err := r.store.WasCreatedByBot(ctx, guildID, channelID)
	if err != nil {
		return boberr.Wrap(boberr.KindInternal, err, "reading channel marker")
	}
	if !marked {
		log.Debug("channel was not built by the bot, leaving it alone")
		return nil
	}

	members, err := r.client.ChannelMembers(ctx, guildID, channelID)
	if err != nil {
		return boberr.Wrap(boberr.KindPlatform, err, "listing channel members")
	}
	if len(members) > 0 {
		log.Debug("channel still has members", zap.Int("members", len(members)))
		return nil
	}

	grace, ok, err := r.store.GetDeletionTime(ctx, guildID)
	if err != nil {
		return boberr.Wrap(boberr.KindInternal, err, "reading deletion time")
	}
	if !ok {
		grace = r.grace
	}
	commandChannel, err := r.store.GetCommandChannel(ctx, guildID)
	if err != nil {
		return boberr.Wrap(boberr.KindInternal, err, "reading command channel")
	}
	if commandChannel == "" {
		return boberr.New(boberr.KindAdmin, "No command channel is configured, so deletions cannot be announced.")
	}

	deadline := r.clock.Now().Add(grace)
	announce := fmt.Sprintf("🕒 <#%s> will be deleted <t:%d:R> if it will still be empty.", channelID, deadline.Unix())
	ref, err := r.client.SendMessage(ctx, commandChannel, announce)
	if err != nil {
		return boberr.Wrap(boberr.KindPlatform, err, "announcing the deletion")
	}
	log.Debug("deletion announced", zap.Duration("grace", grace))

	r.clock.AfterFunc(grace, func() {
		r.finish(ctx, guildID, channelID, channel.Name, ref, log)
	})
	return nil
}

// finish is the post-grace half of the pipeline. It runs from a timer
// goroutine, so failures are logged instead of returned.
func (r *Reaper) finish(ctx context.Context, guildID, channelID, channelName string, ref platform.MessageRef, log *zap.Logger) {
	members, err := r.client.ChannelMembers(ctx, guildID, channelID)
	if err != nil {
		log.Error("failed to re-check channel members", zap.Error(err))
		return
	}
	if len(members) > 0 {
		// Someone came back. The announcement stays as it is.
		log.Debug("channel repopulated during grace period", zap.Int("members", len(members)))
		return
	}

	if err := r.client.DeleteChannel(ctx, channelID); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			log.Debug("channel was already deleted")
			return
		}
		log.Error("failed to delete channel", zap.Error(err))
		return
	}

	if err := r.store.UnmarkCreatedByBot(ctx, guildID, channelID); err != nil {
		log.Error("failed to clear channel marker", zap.Error(err))
	}

	edited := fmt.Sprintf("🗑 _#%s_ was deleted, as it was empty.", channelName)
	if err := r.client.EditMessage(ctx, ref, edited); err != nil {
		log.Error("failed to edit deletion announcement", zap.Error(err))
		return
	}
	log.Info("deleted empty channel", zap.String("name", channelName))
}

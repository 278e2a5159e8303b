package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/RYGhub/bobbot/internal/boberr"
	"github.com/RYGhub/bobbot/internal/builder"
	"github.com/RYGhub/bobbot/internal/config"
	"github.com/RYGhub/bobbot/internal/platform"
	"github.com/RYGhub/bobbot/internal/reaper"
	"github.com/RYGhub/bobbot/internal/storage"
)

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *storage.Store
	session  *discordgo.Session
	platform platform.Client
	builder  *builder.Builder
	reaper   *reaper.Reaper
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates

	client := platform.NewDiscord(session)
	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		session:  session,
		platform: client,
		reaper:   reaper.New(client, store, logger, time.Duration(cfg.DefaultDeletionSeconds)*time.Second),
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onVoiceStateUpdate)

	if err := b.session.Open(); err != nil {
		return err
	}

	// The builder signs the bot's own overwrite, so it needs the
	// application identity the gateway hands back on open. The
	// interaction handler is registered only once the builder exists;
	// commands persist across restarts and can arrive immediately.
	b.builder = builder.New(b.platform, b.store, b.logger, b.session.State.User.ID, b.cfg.DefaultBitrate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.registerCommands(); err != nil {
		return err
	}

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) onVoiceStateUpdate(session *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	channelID, left := reaper.LeftChannel(event.BeforeUpdate, event.VoiceState)
	if !left {
		return
	}
	guildID := event.BeforeUpdate.GuildID
	if guildID == "" {
		guildID = event.GuildID
	}

	go func() {
		ctx := context.Background()
		if err := b.reaper.Sweep(ctx, guildID, channelID); err != nil {
			b.logSweepError(guildID, channelID, err)
		}
	}()
}

// logSweepError picks the severity by error kind: a misconfigured guild
// is the operator's problem, not an outage.
func (b *Bot) logSweepError(guildID, channelID string, err error) {
	fields := []zap.Field{
		zap.String("guild_id", guildID),
		zap.String("channel_id", channelID),
		zap.Error(err),
	}
	if boberr.KindOf(err) == boberr.KindAdmin {
		b.logger.Warn("sweep skipped", fields...)
		return
	}
	b.logger.Error("sweep failed", fields...)
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

// respondError renders a classified error the way users expect to see
// it, one emoji per kind. Errors are always ephemeral.
func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate, err error) {
	kind := boberr.KindOf(err)
	if kind == boberr.KindPlatform || kind == boberr.KindInternal {
		b.logger.Error("command failed", zap.String("kind", kind.String()), zap.Error(err))
	}
	b.respond(session, interaction, kind.Emoji()+" "+boberr.Message(err), true)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/RYGhub/bobbot/internal/boberr"
	"github.com/RYGhub/bobbot/internal/builder"
	"github.com/RYGhub/bobbot/internal/channelname"
	"github.com/RYGhub/bobbot/internal/platform"
	"github.com/RYGhub/bobbot/internal/storage"
)

// Option payloads are decoded once here, at the gateway boundary, so
// the rest of the code never touches the dynamic option list.
type buildOptions struct {
	Name   string
	Preset string
}

type saveOptions struct {
	Preset     string
	TemplateID string
	Overwrite  bool
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if b.builder == nil {
		// Still starting up. Dropping the command beats crashing on it.
		return
	}
	if interaction.GuildID == "" {
		b.respond(session, interaction, "⚠️ This command only works inside a server.", true)
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()
	switch data.Name {
	case "build":
		b.handleBuild(ctx, session, interaction, data.Options)
	case "save":
		b.handleSave(ctx, session, interaction, data.Options)
	case "presets":
		b.handlePresets(ctx, session, interaction)
	case "config":
		b.handleConfig(ctx, session, interaction, data.Options)
	}
}

func (b *Bot) handleBuild(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	var opts buildOptions
	for _, option := range options {
		switch option.Name {
		case "name":
			opts.Name = option.StringValue()
		case "preset":
			opts.Preset = channelname.Channelify(option.StringValue())
		}
	}

	name := channelname.Channelify(opts.Name)
	if name == "" {
		b.respondError(session, interaction, boberr.User("That name has no characters usable in a channel name."))
		return
	}

	category, err := b.platform.ChannelCategory(ctx, interaction.ChannelID)
	if err != nil {
		b.respondError(session, interaction, boberr.Wrap(boberr.KindPlatform, err, "Couldn't resolve the category to build in."))
		return
	}

	channel, err := b.builder.Build(ctx, builder.BuildRequest{
		GuildID:     interaction.GuildID,
		Name:        name,
		RequesterID: interaction.Member.User.ID,
		Category:    category,
		PresetName:  opts.Preset,
	})
	if err != nil {
		b.respondError(session, interaction, err)
		return
	}

	b.respond(session, interaction, fmt.Sprintf("🔨 Built <#%s>!", channel.ID), false)
}

func (b *Bot) handleSave(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	var opts saveOptions
	for _, option := range options {
		switch option.Name {
		case "preset":
			opts.Preset = option.StringValue()
		case "template":
			opts.TemplateID = option.ChannelValue(nil).ID
		case "overwrite":
			opts.Overwrite = option.BoolValue()
		}
	}

	name := channelname.Channelify(opts.Preset)
	if name == "" {
		b.respondError(session, interaction, boberr.User("That preset name has no usable characters."))
		return
	}
	if opts.Overwrite && !memberHasPermission(interaction, discordgo.PermissionManageChannels) {
		b.respondError(session, interaction, boberr.User("You need the Manage Channels permission to overwrite a preset."))
		return
	}

	template, err := b.platform.Channel(ctx, opts.TemplateID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			b.respondError(session, interaction, boberr.User("That channel doesn't exist anymore."))
			return
		}
		b.respondError(session, interaction, boberr.Wrap(boberr.KindPlatform, err, "Couldn't read the template channel."))
		return
	}
	if !template.Voice {
		b.respondError(session, interaction, boberr.User("The template must be a voice channel."))
		return
	}

	data := storage.PresetData{
		Bitrate:    template.Bitrate,
		Overwrites: template.Overwrites,
	}
	if template.UserLimit > 0 {
		limit := template.UserLimit
		data.UserLimit = &limit
	}

	result, err := b.store.SavePreset(ctx, interaction.GuildID, name, data, opts.Overwrite)
	if err != nil {
		b.respondError(session, interaction, boberr.Wrap(boberr.KindInternal, err, "Couldn't save the preset."))
		return
	}

	switch result {
	case storage.SaveCreated:
		b.respond(session, interaction, fmt.Sprintf("💾 Saved preset _%s_.", name), false)
	case storage.SaveUpdated:
		b.respond(session, interaction, fmt.Sprintf("💾 Updated preset _%s_.", name), false)
	case storage.SaveRejected:
		b.respondError(session, interaction, boberr.User("A preset named _%s_ already exists. Set overwrite to replace it.", name))
	}
}

func (b *Bot) handlePresets(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	names, err := b.store.ListPresets(ctx, interaction.GuildID)
	if err != nil {
		b.respondError(session, interaction, boberr.Wrap(boberr.KindInternal, err, "Couldn't list the presets."))
		return
	}
	if len(names) == 0 {
		b.respond(session, interaction, "There are no presets saved in this server.", true)
		return
	}

	var sb strings.Builder
	sb.WriteString("📚 Presets saved in this server:")
	for _, name := range names {
		sb.WriteString("\n- _")
		sb.WriteString(name)
		sb.WriteString("_")
	}
	b.respond(session, interaction, sb.String(), true)
}

func (b *Bot) handleConfig(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		return
	}
	sub := options[0]

	switch sub.Name {
	case "channel":
		if len(sub.Options) == 0 {
			current, err := b.store.GetCommandChannel(ctx, interaction.GuildID)
			if err != nil {
				b.respondError(session, interaction, boberr.Wrap(boberr.KindInternal, err, "Couldn't read the command channel."))
				return
			}
			if current == "" {
				b.respond(session, interaction, "⚙️ No command channel is set.", true)
				return
			}
			b.respond(session, interaction, fmt.Sprintf("⚙️ The command channel is <#%s>.", current), true)
			return
		}
		if !memberHasPermission(interaction, discordgo.PermissionManageChannels) {
			b.respondError(session, interaction, boberr.User("You need the Manage Channels permission to set the command channel."))
			return
		}
		channel := sub.Options[0].ChannelValue(nil)
		if err := b.store.SetCommandChannel(ctx, interaction.GuildID, channel.ID); err != nil {
			b.respondError(session, interaction, boberr.Wrap(boberr.KindInternal, err, "Couldn't save the command channel."))
			return
		}
		b.logger.Info("command channel set",
			zap.String("guild_id", interaction.GuildID),
			zap.String("channel_id", channel.ID))
		b.respond(session, interaction, fmt.Sprintf("⚙️ The command channel is now <#%s>.", channel.ID), true)

	case "deletion_time":
		if !memberHasPermission(interaction, discordgo.PermissionManageServer) {
			b.respondError(session, interaction, boberr.User("You need the Manage Server permission to set the deletion time."))
			return
		}
		seconds := int64(0)
		if len(sub.Options) > 0 {
			seconds = sub.Options[0].IntValue()
		}
		if seconds <= 0 {
			b.respondError(session, interaction, boberr.User("The deletion time must be a positive number of seconds."))
			return
		}
		if err := b.store.SetDeletionTime(ctx, interaction.GuildID, time.Duration(seconds)*time.Second); err != nil {
			b.respondError(session, interaction, boberr.Wrap(boberr.KindInternal, err, "Couldn't save the deletion time."))
			return
		}
		b.respond(session, interaction, fmt.Sprintf("⚙️ Empty channels will now be deleted after %d seconds.", seconds), true)
	}
}

func memberHasPermission(interaction *discordgo.InteractionCreate, permission int64) bool {
	return interaction.Member != nil && interaction.Member.Permissions&permission != 0
}

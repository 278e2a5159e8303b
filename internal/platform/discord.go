package platform

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Client on top of a discordgo session.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

func (d *Discord) CreateVoiceChannel(ctx context.Context, guildID string, req CreateVoiceChannelRequest) (*Channel, error) {
	_ = ctx
	created, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildVoice,
		Bitrate:              req.Bitrate,
		UserLimit:            req.UserLimit,
		ParentID:             req.ParentID,
		PermissionOverwrites: req.Overwrites,
	})
	if err != nil {
		return nil, err
	}
	return snapshotChannel(created), nil
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID string) error {
	_ = ctx
	_, err := d.session.ChannelDelete(channelID)
	if isRESTCode(err, discordgo.ErrCodeUnknownChannel) {
		return ErrNotFound
	}
	return err
}

func (d *Discord) Channel(ctx context.Context, channelID string) (*Channel, error) {
	_ = ctx
	channel, err := d.session.Channel(channelID)
	if err != nil {
		if isRESTCode(err, discordgo.ErrCodeUnknownChannel) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return snapshotChannel(channel), nil
}

// ChannelMembers lists the ids of members currently present in a voice
// channel, read from the gateway voice-state cache.
func (d *Discord) ChannelMembers(ctx context.Context, guildID, channelID string) ([]string, error) {
	_ = ctx
	guild, err := d.session.State.Guild(guildID)
	if err != nil {
		return nil, err
	}

	var members []string
	for _, state := range guild.VoiceStates {
		if state == nil || state.UserID == "" {
			continue
		}
		if state.ChannelID == channelID {
			members = append(members, state.UserID)
		}
	}
	return members, nil
}

func (d *Discord) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	_ = ctx
	err := d.session.GuildMemberMove(guildID, userID, &channelID)
	if isRESTCode(err, discordgo.ErrCodeTargetIsNotConnectedToVoice) {
		return ErrNotConnectedToVoice
	}
	return err
}

func (d *Discord) SendMessage(ctx context.Context, channelID, content string) (MessageRef, error) {
	_ = ctx
	msg, err := d.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (d *Discord) EditMessage(ctx context.Context, ref MessageRef, content string) error {
	_ = ctx
	_, err := d.session.ChannelMessageEdit(ref.ChannelID, ref.MessageID, content)
	return err
}

func (d *Discord) ChannelCategory(ctx context.Context, channelID string) (*Category, error) {
	channel, err := d.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.ParentID == "" {
		return nil, nil
	}

	parent, err := d.session.Channel(channel.ParentID)
	if err != nil {
		if isRESTCode(err, discordgo.ErrCodeUnknownChannel) {
			return nil, nil
		}
		return nil, err
	}
	return &Category{
		ID:         parent.ID,
		Name:       parent.Name,
		Overwrites: parent.PermissionOverwrites,
	}, nil
}

func snapshotChannel(channel *discordgo.Channel) *Channel {
	return &Channel{
		ID:         channel.ID,
		GuildID:    channel.GuildID,
		Name:       channel.Name,
		ParentID:   channel.ParentID,
		Bitrate:    channel.Bitrate,
		UserLimit:  channel.UserLimit,
		Overwrites: channel.PermissionOverwrites,
		Voice:      channel.Type == discordgo.ChannelTypeGuildVoice || channel.Type == discordgo.ChannelTypeGuildStageVoice,
	}
}

func isRESTCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == code
	}
	return false
}

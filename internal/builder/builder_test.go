package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RYGhub/bobbot/internal/boberr"
	"github.com/RYGhub/bobbot/internal/platform"
	"github.com/RYGhub/bobbot/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func newTestBuilder(t *testing.T) (*Builder, *platform.MockClient, *storage.Store) {
	t.Helper()
	client := new(platform.MockClient)
	store := newTestStore(t)
	b := New(client, store, zap.NewNop(), "bot-id", 0)
	return b, client, store
}

func TestBuildUnknownPreset(t *testing.T) {
	b, client, _ := newTestBuilder(t)
	ctx := context.Background()

	channel, err := b.Build(ctx, BuildRequest{
		GuildID:     "g1",
		Name:        "gaming",
		RequesterID: "u1",
		PresetName:  "nope",
	})

	require.Error(t, err)
	assert.Nil(t, channel)
	assert.Equal(t, boberr.KindUser, boberr.KindOf(err))
	client.AssertNotCalled(t, "CreateVoiceChannel", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildDefaults(t *testing.T) {
	b, client, _ := newTestBuilder(t)
	ctx := context.Background()

	client.On("CreateVoiceChannel", mock.Anything, "g1", mock.MatchedBy(func(req platform.CreateVoiceChannelRequest) bool {
		return req.Name == "gaming" &&
			req.Bitrate == DefaultBitrate &&
			req.UserLimit == 0 &&
			req.ParentID == "" &&
			len(req.Overwrites) == 2
	})).Return(&platform.Channel{ID: "c1", GuildID: "g1", Name: "gaming", Voice: true}, nil)
	client.On("MoveMember", mock.Anything, "g1", "u1", "c1").Return(nil)

	channel, err := b.Build(ctx, BuildRequest{GuildID: "g1", Name: "gaming", RequesterID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, "c1", channel.ID)
	client.AssertExpectations(t)
}

func TestBuildWithPresetAndCategory(t *testing.T) {
	b, client, store := newTestBuilder(t)
	ctx := context.Background()

	limit := 4
	_, err := store.SavePreset(ctx, "g1", "duo", storage.PresetData{
		Bitrate:   96000,
		UserLimit: &limit,
		Overwrites: []*discordgo.PermissionOverwrite{
			{ID: "role-1", Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionViewChannel},
		},
	}, false)
	require.NoError(t, err)

	category := &platform.Category{
		ID: "cat-1",
		Overwrites: []*discordgo.PermissionOverwrite{
			{ID: "role-2", Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		},
	}

	client.On("CreateVoiceChannel", mock.Anything, "g1", mock.MatchedBy(func(req platform.CreateVoiceChannelRequest) bool {
		if req.Bitrate != 96000 || req.UserLimit != 4 || req.ParentID != "cat-1" {
			return false
		}
		// category first, then preset, then requester and bot.
		return len(req.Overwrites) == 4 &&
			req.Overwrites[0].ID == "role-2" &&
			req.Overwrites[1].ID == "role-1" &&
			req.Overwrites[2].ID == "u1" &&
			req.Overwrites[3].ID == "bot-id"
	})).Return(&platform.Channel{ID: "c2", GuildID: "g1", Name: "duo-room", Voice: true}, nil)
	client.On("MoveMember", mock.Anything, "g1", "u1", "c2").Return(nil)

	channel, err := b.Build(ctx, BuildRequest{
		GuildID:     "g1",
		Name:        "duo-room",
		RequesterID: "u1",
		Category:    category,
		PresetName:  "duo",
	})
	require.NoError(t, err)
	assert.Equal(t, "c2", channel.ID)
	client.AssertExpectations(t)
}

func TestBuildPresetWithoutBitrate(t *testing.T) {
	b, client, store := newTestBuilder(t)
	ctx := context.Background()

	_, err := store.SavePreset(ctx, "g1", "bare", storage.PresetData{}, false)
	require.NoError(t, err)

	client.On("CreateVoiceChannel", mock.Anything, "g1", mock.MatchedBy(func(req platform.CreateVoiceChannelRequest) bool {
		return req.Bitrate == DefaultBitrate
	})).Return(&platform.Channel{ID: "c6", GuildID: "g1", Voice: true}, nil)
	client.On("MoveMember", mock.Anything, "g1", "u1", "c6").Return(nil)

	_, err = b.Build(ctx, BuildRequest{GuildID: "g1", Name: "bare-room", RequesterID: "u1", PresetName: "bare"})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestBuildMarksChannelForReaping(t *testing.T) {
	b, client, store := newTestBuilder(t)
	ctx := context.Background()

	client.On("CreateVoiceChannel", mock.Anything, "g1", mock.Anything).
		Return(&platform.Channel{ID: "c3", GuildID: "g1", Voice: true}, nil)
	client.On("MoveMember", mock.Anything, "g1", "u1", "c3").Return(nil)

	_, err := b.Build(ctx, BuildRequest{GuildID: "g1", Name: "marked", RequesterID: "u1"})
	require.NoError(t, err)

	marked, err := store.WasCreatedByBot(ctx, "g1", "c3")
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestBuildMoveNotConnected(t *testing.T) {
	b, client, store := newTestBuilder(t)
	ctx := context.Background()

	client.On("CreateVoiceChannel", mock.Anything, "g1", mock.Anything).
		Return(&platform.Channel{ID: "c4", GuildID: "g1", Voice: true}, nil)
	client.On("MoveMember", mock.Anything, "g1", "u1", "c4").
		Return(platform.ErrNotConnectedToVoice)

	channel, err := b.Build(ctx, BuildRequest{GuildID: "g1", Name: "solo", RequesterID: "u1"})

	require.Error(t, err)
	assert.Equal(t, boberr.KindUser, boberr.KindOf(err))
	// The channel is not rolled back and stays marked.
	require.NotNil(t, channel)
	marked, err := store.WasCreatedByBot(ctx, "g1", "c4")
	require.NoError(t, err)
	assert.True(t, marked)
	client.AssertNotCalled(t, "DeleteChannel", mock.Anything, mock.Anything)
}

func TestBuildMoveFailure(t *testing.T) {
	b, client, _ := newTestBuilder(t)
	ctx := context.Background()

	client.On("CreateVoiceChannel", mock.Anything, "g1", mock.Anything).
		Return(&platform.Channel{ID: "c5", GuildID: "g1", Voice: true}, nil)
	client.On("MoveMember", mock.Anything, "g1", "u1", "c5").
		Return(errors.New("missing permissions"))

	channel, err := b.Build(ctx, BuildRequest{GuildID: "g1", Name: "stuck", RequesterID: "u1"})

	require.Error(t, err)
	assert.Equal(t, boberr.KindAdmin, boberr.KindOf(err))
	require.NotNil(t, channel)
	client.AssertNotCalled(t, "DeleteChannel", mock.Anything, mock.Anything)
}

package platform

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client for use in tests.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateVoiceChannel(ctx context.Context, guildID string, req CreateVoiceChannelRequest) (*Channel, error) {
	args := m.Called(ctx, guildID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Channel), args.Error(1)
}

func (m *MockClient) DeleteChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockClient) Channel(ctx context.Context, channelID string) (*Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Channel), args.Error(1)
}

func (m *MockClient) ChannelMembers(ctx context.Context, guildID, channelID string) ([]string, error) {
	args := m.Called(ctx, guildID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	args := m.Called(ctx, guildID, userID, channelID)
	return args.Error(0)
}

func (m *MockClient) SendMessage(ctx context.Context, channelID, content string) (MessageRef, error) {
	args := m.Called(ctx, channelID, content)
	if args.Get(0) == nil {
		return MessageRef{}, args.Error(1)
	}
	return args.Get(0).(MessageRef), args.Error(1)
}

func (m *MockClient) EditMessage(ctx context.Context, ref MessageRef, content string) error {
	args := m.Called(ctx, ref, content)
	return args.Error(0)
}

func (m *MockClient) ChannelCategory(ctx context.Context, channelID string) (*Category, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/RYGhub/bobbot/internal/boberr"
)

func TestInteractionBeforeBuilderReady(t *testing.T) {
	b := &Bot{logger: zap.NewNop()}

	interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g1",
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "build",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "name", Type: discordgo.ApplicationCommandOptionString, Value: "gaming"},
			},
		},
	}}

	// A command arriving while the bot is still starting up must be
	// dropped, not crash the process.
	b.onInteractionCreate(nil, interaction)
}

func TestLogSweepErrorSeverity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := &Bot{logger: zap.New(core)}

	b.logSweepError("g1", "v1", boberr.New(boberr.KindAdmin, "No command channel is configured, so deletions cannot be announced."))
	b.logSweepError("g1", "v1", errors.New("gateway closed"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("misconfiguration logged at %v, want %v", entries[0].Level, zapcore.WarnLevel)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("platform failure logged at %v, want %v", entries[1].Level, zapcore.ErrorLevel)
	}
}

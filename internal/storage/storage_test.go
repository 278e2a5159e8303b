package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestCommandChannel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetCommandChannel(ctx, "g1")
	if err != nil {
		t.Fatalf("get command channel: %v", err)
	}
	if got != "" {
		t.Fatalf("expected unset command channel, got %q", got)
	}

	if err := store.SetCommandChannel(ctx, "g1", "c1"); err != nil {
		t.Fatalf("set command channel: %v", err)
	}
	if err := store.SetCommandChannel(ctx, "g1", "c2"); err != nil {
		t.Fatalf("update command channel: %v", err)
	}

	got, err = store.GetCommandChannel(ctx, "g1")
	if err != nil {
		t.Fatalf("get command channel: %v", err)
	}
	if got != "c2" {
		t.Fatalf("expected c2, got %q", got)
	}

	if err := store.UnsetCommandChannel(ctx, "g1"); err != nil {
		t.Fatalf("unset command channel: %v", err)
	}
	got, _ = store.GetCommandChannel(ctx, "g1")
	if got != "" {
		t.Fatalf("expected unset after delete, got %q", got)
	}
}

func TestDeletionTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetDeletionTime(ctx, "g1")
	if err != nil {
		t.Fatalf("get deletion time: %v", err)
	}
	if ok {
		t.Fatalf("expected unset deletion time")
	}

	if err := store.SetDeletionTime(ctx, "g1", 5*time.Second); err != nil {
		t.Fatalf("set deletion time: %v", err)
	}
	d, ok, err := store.GetDeletionTime(ctx, "g1")
	if err != nil {
		t.Fatalf("get deletion time: %v", err)
	}
	if !ok || d != 5*time.Second {
		t.Fatalf("expected 5s, got %v (set=%t)", d, ok)
	}
}

func TestCreatedChannelMarkers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	was, err := store.WasCreatedByBot(ctx, "g1", "v1")
	if err != nil {
		t.Fatalf("was created: %v", err)
	}
	if was {
		t.Fatalf("expected no marker")
	}

	if err := store.MarkCreatedByBot(ctx, "g1", "v1"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := store.MarkCreatedByBot(ctx, "g1", "v1"); err != nil {
		t.Fatalf("mark twice should be a no-op: %v", err)
	}

	was, _ = store.WasCreatedByBot(ctx, "g1", "v1")
	if !was {
		t.Fatalf("expected marker after mark")
	}
	was, _ = store.WasCreatedByBot(ctx, "g2", "v1")
	if was {
		t.Fatalf("marker must be scoped to the guild")
	}

	_ = store.MarkCreatedByBot(ctx, "g1", "v2")
	channels, err := store.ListCreatedChannels(ctx, "g1")
	if err != nil {
		t.Fatalf("list created: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 markers, got %v", channels)
	}

	if err := store.UnmarkCreatedByBot(ctx, "g1", "v1"); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	was, _ = store.WasCreatedByBot(ctx, "g1", "v1")
	if was {
		t.Fatalf("expected marker removed")
	}
}

func TestSavePreset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	limit := 4
	data := PresetData{Bitrate: 96000, UserLimit: &limit}

	result, err := store.SavePreset(ctx, "g1", "gaming", data, false)
	if err != nil {
		t.Fatalf("save preset: %v", err)
	}
	if result != SaveCreated {
		t.Fatalf("expected created, got %v", result)
	}

	result, err = store.SavePreset(ctx, "g1", "gaming", PresetData{Bitrate: 128000}, false)
	if err != nil {
		t.Fatalf("save without overwrite: %v", err)
	}
	if result != SaveRejected {
		t.Fatalf("expected rejected, got %v", result)
	}

	got, err := store.GetPreset(ctx, "g1", "gaming")
	if err != nil {
		t.Fatalf("get preset: %v", err)
	}
	if got == nil || got.Bitrate != 96000 {
		t.Fatalf("rejected save must not touch the record, got %+v", got)
	}
	if got.UserLimit == nil || *got.UserLimit != 4 {
		t.Fatalf("expected user limit 4, got %+v", got.UserLimit)
	}

	result, err = store.SavePreset(ctx, "g1", "gaming", PresetData{Bitrate: 128000}, true)
	if err != nil {
		t.Fatalf("save with overwrite: %v", err)
	}
	if result != SaveUpdated {
		t.Fatalf("expected updated, got %v", result)
	}

	got, _ = store.GetPreset(ctx, "g1", "gaming")
	if got.Bitrate != 128000 {
		t.Fatalf("expected overwritten bitrate, got %d", got.Bitrate)
	}
	if got.UserLimit != nil {
		t.Fatalf("expected user limit cleared by overwrite, got %v", *got.UserLimit)
	}

	missing, err := store.GetPreset(ctx, "g1", "nope")
	if err != nil {
		t.Fatalf("get missing preset: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing preset")
	}

	names, err := store.ListPresets(ctx, "g1")
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(names) != 1 || names[0] != "gaming" {
		t.Fatalf("unexpected preset list %v", names)
	}
}

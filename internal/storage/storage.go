package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the per-guild configuration store: command channels, deletion
// times, bot-created channel markers and presets.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// GetCommandChannel returns the configured command channel for the guild,
// or "" when none has been set.
func (s *Store) GetCommandChannel(ctx context.Context, guildID string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT channel_id FROM command_channels WHERE guild_id = ?`, guildID)

	var channelID string
	if err := row.Scan(&channelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return channelID, nil
}

func (s *Store) SetCommandChannel(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO command_channels (guild_id, channel_id) VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET channel_id = excluded.channel_id
	`, guildID, channelID)
	return err
}

func (s *Store) UnsetCommandChannel(ctx context.Context, guildID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM command_channels WHERE guild_id = ?`, guildID)
	return err
}

// GetDeletionTime returns the configured grace period for the guild, or
// (0, false) when the guild relies on the default.
func (s *Store) GetDeletionTime(ctx context.Context, guildID string) (time.Duration, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT deletion_seconds FROM deletion_times WHERE guild_id = ?`, guildID)

	var seconds int64
	if err := row.Scan(&seconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return time.Duration(seconds) * time.Second, true, nil
}

func (s *Store) SetDeletionTime(ctx context.Context, guildID string, d time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deletion_times (guild_id, deletion_seconds) VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET deletion_seconds = excluded.deletion_seconds
	`, guildID, int64(d/time.Second))
	return err
}

func (s *Store) UnsetDeletionTime(ctx context.Context, guildID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deletion_times WHERE guild_id = ?`, guildID)
	return err
}

// WasCreatedByBot reports whether the marker for (guild, channel) exists.
// The marker is the only signal that makes a channel eligible for
// automatic deletion.
func (s *Store) WasCreatedByBot(ctx context.Context, guildID, channelID string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM channels_created WHERE guild_id = ? AND channel_id = ?
	`, guildID, channelID)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) MarkCreatedByBot(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO channels_created (guild_id, channel_id) VALUES (?, ?)
	`, guildID, channelID)
	return err
}

// UnmarkCreatedByBot drops the marker for a channel that no longer
// exists. Orphaned markers are harmless, this just keeps the table tidy.
func (s *Store) UnmarkCreatedByBot(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM channels_created WHERE guild_id = ? AND channel_id = ?
	`, guildID, channelID)
	return err
}

func (s *Store) ListCreatedChannels(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id FROM channels_created WHERE guild_id = ? ORDER BY channel_id
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		channels = append(channels, id)
	}
	return channels, rows.Err()
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// PresetData is the stored template a channel can be built from: the
// bitrate, user limit and permission overwrites captured from a live
// voice channel.
type PresetData struct {
	Bitrate    int                              `json:"bitrate"`
	UserLimit  *int                             `json:"user_limit,omitempty"`
	Overwrites []*discordgo.PermissionOverwrite `json:"permissions"`
}

// SaveResult tells the caller what SavePreset did with the record.
type SaveResult int

const (
	SaveCreated SaveResult = iota
	SaveUpdated
	SaveRejected
)

// GetPreset returns the preset stored under (guild, name), or (nil, nil)
// when no such preset exists.
func (s *Store) GetPreset(ctx context.Context, guildID, name string) (*PresetData, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT preset_data FROM presets WHERE guild_id = ? AND preset_name = ?
	`, guildID, name)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var data PresetData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SavePreset stores data under (guild, name). An existing record is only
// replaced when overwrite is set; otherwise the write is rejected and the
// stored preset is left untouched.
func (s *Store) SavePreset(ctx context.Context, guildID, name string, data PresetData, overwrite bool) (SaveResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return SaveRejected, err
	}

	existing, err := s.GetPreset(ctx, guildID, name)
	if err != nil {
		return SaveRejected, err
	}
	if existing != nil && !overwrite {
		return SaveRejected, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO presets (guild_id, preset_name, preset_data) VALUES (?, ?, ?)
		ON CONFLICT(guild_id, preset_name) DO UPDATE SET preset_data = excluded.preset_data
	`, guildID, name, string(raw))
	if err != nil {
		return SaveRejected, err
	}
	if existing != nil {
		return SaveUpdated, nil
	}
	return SaveCreated, nil
}

func (s *Store) ListPresets(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT preset_name FROM presets WHERE guild_id = ? ORDER BY preset_name
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

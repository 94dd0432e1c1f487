package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// SaveSetting upserts one typed processor setting.
func (s *Store) SaveSetting(ctx context.Context, key, value, valueType string) error {
	switch valueType {
	case SettingString, SettingBool, SettingInt, SettingFloat, SettingJSON:
	default:
		return fmt.Errorf("setting %q: unknown value type %q", key, valueType)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO processor_settings (key, value, value_type, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, value_type = excluded.value_type, updated_at = excluded.updated_at`,
		key, value, valueType, now()); err != nil {
		return fmt.Errorf("save setting %q: %w", key, err)
	}
	return nil
}

// GetSetting returns one processor setting.
func (s *Store) GetSetting(ctx context.Context, key string) (*Setting, error) {
	var (
		setting    Setting
		updatedRaw string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT key, value, value_type, updated_at FROM processor_settings WHERE key = ?", key,
	).Scan(&setting.Key, &setting.Value, &setting.ValueType, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	if updated, parseErr := parseTimeString(updatedRaw); parseErr == nil {
		setting.UpdatedAt = updated
	}
	return &setting, nil
}

// LoadSettings returns all processor settings decoded to their declared
// types: string, bool, int64, float64, or any (for JSON values). Values that
// fail to decode fall back to their raw string form.
func (s *Store) LoadSettings(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value, value_type FROM processor_settings")
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]any)
	for rows.Next() {
		var key, value, valueType string
		if err := rows.Scan(&key, &value, &valueType); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = decodeSetting(value, valueType)
	}
	return settings, rows.Err()
}

func decodeSetting(value, valueType string) any {
	switch valueType {
	case SettingBool:
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	case SettingInt:
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	case SettingFloat:
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	case SettingJSON:
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			return decoded
		}
	}
	return value
}

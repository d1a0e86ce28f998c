package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/sugarwarrior/internal/model"
)

// StorageName is the fixed key of the durable profile record.
const StorageName = "sugar-warrior-storage"

// formatVersion is bumped whenever the persisted JSON shape changes.
const formatVersion = 1

// persisted is the JSON document stored under StorageName.
type persisted struct {
	Version int           `json:"version"`
	Profile model.Profile `json:"profile"`
}

// LoadProfile reads the persisted profile. The boolean is false when no
// record exists (first launch).
func (s *Store) LoadProfile(ctx context.Context) (model.Profile, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM persisted_state WHERE name = ?`, StorageName,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}

	var doc persisted
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return model.Profile{}, false, fmt.Errorf("load profile: decode: %w", err)
	}
	if doc.Version > formatVersion {
		return model.Profile{}, false, fmt.Errorf("load profile: unsupported format version %d", doc.Version)
	}
	return doc.Profile, true, nil
}

// SaveProfile replaces the persisted profile.
func (s *Store) SaveProfile(ctx context.Context, p model.Profile) error {
	b, err := json.Marshal(persisted{Version: formatVersion, Profile: p})
	if err != nil {
		return fmt.Errorf("save profile: encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO persisted_state (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, StorageName, string(b), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Clear removes the persisted profile. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM persisted_state WHERE name = ?`, StorageName); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

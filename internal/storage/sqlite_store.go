package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

const (
	keyRemindersEnabled = "reminders_enabled"
	keyActiveBaseIDs    = "active_base_ids"
	keyLastSyncAt       = "last_sync_at"
)

type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteStore(db *sql.DB, log *slog.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func OpenSQLite(path string, log *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sync state: %w", err)
	}
	store, err := NewSQLiteStore(db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the full sync state. Missing or malformed values degrade to
// their defaults (enabled, unknown snapshot) rather than failing: the only
// consumer of the snapshot is the display-time suppression check, which
// must fail open.
func (s *SQLiteStore) Load(ctx context.Context) SyncState {
	state := SyncState{Enabled: true}

	if raw, ok := s.get(ctx, keyRemindersEnabled); ok {
		state.Enabled = raw == "1"
	}

	if raw, ok := s.get(ctx, keyActiveBaseIDs); ok {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			s.log.Warn("discarding malformed active id snapshot", "error", err)
		} else {
			if ids == nil {
				ids = []string{}
			}
			state.Snapshot = ids
		}
	}

	if raw, ok := s.get(ctx, keyLastSyncAt); ok {
		at, err := time.Parse(sqliteTimeLayout, raw)
		if err != nil {
			s.log.Warn("discarding malformed last sync time", "error", err)
		} else {
			state.LastSyncAt = &at
		}
	}

	return state
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, baseIDs []string, syncedAt time.Time) error {
	if baseIDs == nil {
		baseIDs = []string{}
	}
	payload, err := json.Marshal(baseIDs)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsert(ctx, tx, keyActiveBaseIDs, string(payload)); err != nil {
		return err
	}
	if err := upsert(ctx, tx, keyLastSyncAt, syncedAt.UTC().Format(sqliteTimeLayout)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SetEnabled(ctx context.Context, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		keyRemindersEnabled, value,
	)
	return err
}

// ClearSnapshot removes the snapshot and last-sync keys, returning the
// store to the unknown state, not the known-empty one.
func (s *SQLiteStore) ClearSnapshot(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_state WHERE key IN (?, ?)`,
		keyActiveBaseIDs, keyLastSyncAt,
	)
	return err
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("sync state read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func upsert(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Package storage is the durable local side of the dual-write model: a
// SQLite database holding the serialized FinanceState under a single
// versioned document key. It is always written, signed in or not, and
// is the fallback source of truth at load time.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

const (
	// StateKey is the current document slot for the aggregate.
	StateKey = "finance_planner_state_v2"
	// legacyStateKey is the pre-versioning slot, read as a fallback when
	// the v2 slot is empty.
	legacyStateKey = "finance_planner_state"
)

// LocalStore is the local device storage collaborator.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore opens (creating if needed) the SQLite database at dbPath
// and runs pending migrations.
func NewLocalStore(dbPath string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &LocalStore{db: db}, nil
}

func (s *LocalStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveState serializes the whole aggregate into the v2 slot, bumping the
// document version, and returns the new version.
func (s *LocalStore) SaveState(ctx context.Context, st core.FinanceState) (int64, error) {
	body, err := json.Marshal(st)
	if err != nil {
		return 0, fmt.Errorf("marshal state: %w", err)
	}

	var version int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO documents (key, body, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			version = documents.version + 1,
			updated_at = excluded.updated_at
		RETURNING version`,
		StateKey, string(body), time.Now().UTC()).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("write state document: %w", err)
	}

	slog.DebugContext(ctx, "State saved locally",
		"key", StateKey,
		"version", version,
		"entries", len(st.Entries),
		"holdings", len(st.SavingsHoldings),
		"insurances", len(st.Insurances))
	return version, nil
}

// LoadState reads the aggregate from the v2 slot, falling back to the
// legacy slot when v2 is absent. The second return is false when neither
// slot holds a document.
func (s *LocalStore) LoadState(ctx context.Context) (core.FinanceState, bool, error) {
	for _, key := range []string{StateKey, legacyStateKey} {
		var body string
		err := s.db.QueryRowContext(ctx,
			`SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return core.FinanceState{}, false, fmt.Errorf("read state document %q: %w", key, err)
		}

		var st core.FinanceState
		if err := json.Unmarshal([]byte(body), &st); err != nil {
			return core.FinanceState{}, false, fmt.Errorf("unmarshal state document %q: %w", key, err)
		}
		if key == legacyStateKey {
			slog.InfoContext(ctx, "Loaded state from legacy document key", "key", key)
		}
		return core.Normalize(st), true, nil
	}
	return core.FinanceState{}, false, nil
}

// StateVersion returns the current version of the v2 document, or 0 when
// it does not exist yet.
func (s *LocalStore) StateVersion(ctx context.Context) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM documents WHERE key = ?`, StateKey).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read state version: %w", err)
	}
	return version, nil
}

// MarkSynced records that the document has been mirrored remotely up to
// the given version.
func (s *LocalStore) MarkSynced(ctx context.Context, version int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_status (key, synced_version, synced_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			synced_version = MAX(sync_status.synced_version, excluded.synced_version),
			synced_at = excluded.synced_at`,
		StateKey, version, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// SyncedVersion returns the highest version known to be mirrored
// remotely, or 0 when nothing has been synced.
func (s *LocalStore) SyncedVersion(ctx context.Context) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT synced_version FROM sync_status WHERE key = ?`, StateKey).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read synced version: %w", err)
	}
	return version, nil
}

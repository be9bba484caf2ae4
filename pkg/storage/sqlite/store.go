// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package sqlite provides a SQLite-backed membership store and reputation ledger.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
	"github.com/AccelByte/extend-trio-queue/pkg/storage/sqlite/migrations"
)

// Store persists active matches and reputation in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) IsActive(ctx context.Context, id string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var active bool
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM matches
		    WHERE ? IN (match_id, participant_0, participant_1, participant_2)
		 )`,
		id,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check active: %w", err)
	}
	return active, nil
}

func (s *Store) InsertMatch(ctx context.Context, match models.Match) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if !match.Mode.Valid() {
		return fmt.Errorf("insert match %s: invalid mode %d", match.ID, int(match.Mode))
	}
	formedAt := match.FormedAt
	if formedAt.IsZero() {
		formedAt = s.now()
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO matches (
		   match_id,
		   participant_0,
		   participant_1,
		   participant_2,
		   mode,
		   formed_at
		 ) VALUES (?, ?, ?, ?, ?, ?)`,
		string(match.ID),
		string(match.Participants[0]),
		string(match.Participants[1]),
		string(match.Participants[2]),
		match.Mode.String(),
		toMillis(formedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (models.Match, error) {
	var (
		id       string
		p0       string
		p1       string
		p2       string
		mode     string
		formedAt int64
	)
	if err := row.Scan(&id, &p0, &p1, &p2, &mode, &formedAt); err != nil {
		return models.Match{}, err
	}
	parsedMode, err := models.ParseMode(mode)
	if err != nil {
		return models.Match{}, fmt.Errorf("%w: match %s: %v", storage.ErrCorruptRecord, id, err)
	}
	return models.Match{
		ID:           models.MatchID(id),
		Participants: models.Group{models.ParticipantID(p0), models.ParticipantID(p1), models.ParticipantID(p2)},
		Mode:         parsedMode,
		FormedAt:     fromMillis(formedAt),
	}, nil
}

func (s *Store) GetMatch(ctx context.Context, id models.MatchID) (models.Match, error) {
	if err := s.ready(ctx); err != nil {
		return models.Match{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT match_id, participant_0, participant_1, participant_2, mode, formed_at
		   FROM matches
		  WHERE match_id = ?`,
		string(id),
	)
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Match{}, storage.ErrNotFound
		}
		if errors.Is(err, storage.ErrCorruptRecord) {
			return models.Match{}, err
		}
		return models.Match{}, fmt.Errorf("get match: %w", err)
	}
	return match, nil
}

func (s *Store) RemoveMatch(ctx context.Context, id models.MatchID) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM matches WHERE match_id = ?", string(id)); err != nil {
		return fmt.Errorf("remove match: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func applyDeltas(ctx context.Context, db execer, deltas []models.Delta, now time.Time) error {
	for _, delta := range deltas {
		_, err := db.ExecContext(
			ctx,
			`INSERT INTO reputation (participant_id, score, updated_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (participant_id) DO UPDATE
			    SET score = score + excluded.score,
			        updated_at = excluded.updated_at`,
			string(delta.Participant),
			delta.Amount,
			toMillis(now),
		)
		if err != nil {
			return fmt.Errorf("apply delta for %s: %w", delta.Participant, err)
		}
	}
	return nil
}

func (s *Store) ApplyDeltas(ctx context.Context, deltas []models.Delta) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reputation transaction: %w", err)
	}
	if err := applyDeltas(ctx, tx, deltas, s.now()); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reputation transaction: %w", err)
	}
	return nil
}

func (s *Store) Reputation(ctx context.Context, id models.ParticipantID) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var score int
	err := s.sqlDB.QueryRowContext(ctx, "SELECT score FROM reputation WHERE participant_id = ?", string(id)).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get reputation: %w", err)
	}
	return score, nil
}

// SettleMatch deletes the match row first; of two concurrent settlements only the
// one whose DELETE returns the row applies deltas.
func (s *Store) SettleMatch(ctx context.Context, id models.MatchID, rule storage.DeltaRule) (models.Match, []models.Delta, error) {
	if err := s.ready(ctx); err != nil {
		return models.Match{}, nil, err
	}
	if rule == nil {
		return models.Match{}, nil, fmt.Errorf("delta rule is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return models.Match{}, nil, fmt.Errorf("begin settlement transaction: %w", err)
	}
	row := tx.QueryRowContext(
		ctx,
		`DELETE FROM matches
		  WHERE match_id = ?
		 RETURNING match_id, participant_0, participant_1, participant_2, mode, formed_at`,
		string(id),
	)
	match, err := scanMatch(row)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return models.Match{}, nil, storage.ErrNotFound
		}
		if errors.Is(err, storage.ErrCorruptRecord) {
			return models.Match{}, nil, err
		}
		return models.Match{}, nil, fmt.Errorf("remove settled match: %w", err)
	}
	deltas := rule(match)
	if err := applyDeltas(ctx, tx, deltas, s.now()); err != nil {
		_ = tx.Rollback()
		return models.Match{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return models.Match{}, nil, fmt.Errorf("commit settlement transaction: %w", err)
	}
	return match, deltas, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "matches.match_id")
}

var _ storage.Backend = (*Store)(nil)

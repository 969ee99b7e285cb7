package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements Store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance. Call Migrate
// before use.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string { return s.dbPath }

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) get(ctx context.Context, key string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStorage) put(ctx context.Context, key string, value []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// LoadProfile returns the stored profile.
func (s *SQLiteStorage) LoadProfile(ctx context.Context) (*model.UserProfile, error) {
	data, err := s.get(ctx, KeyProfile)
	if err != nil {
		return nil, err
	}
	return decodeProfile(data)
}

// SaveProfile replaces the stored profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, p model.UserProfile) error {
	data, err := encodeProfile(p)
	if err != nil {
		return err
	}
	return s.put(ctx, KeyProfile, data)
}

// LoadSettings returns the stored settings.
func (s *SQLiteStorage) LoadSettings(ctx context.Context) (*model.AppSettings, error) {
	data, err := s.get(ctx, KeySettings)
	if err != nil {
		return nil, err
	}
	return decodeSettings(data)
}

// SaveSettings replaces the stored settings.
func (s *SQLiteStorage) SaveSettings(ctx context.Context, settings model.AppSettings) error {
	data, err := encodeSettings(settings)
	if err != nil {
		return err
	}
	return s.put(ctx, KeySettings, data)
}

// AppendFeedback stores a new feedback report.
func (s *SQLiteStorage) AppendFeedback(ctx context.Context, f model.Feedback) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	data, err := encodeFeedback(f)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO feedback (id, reported_at, waste_type, payload) VALUES (?, ?, ?, ?)`,
		f.ID, f.Timestamp.UTC(), f.ReportedItem.WasteType, data)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// ListFeedback returns every report, oldest first.
func (s *SQLiteStorage) ListFeedback(ctx context.Context) ([]model.Feedback, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM feedback ORDER BY reported_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Feedback
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		f, err := decodeFeedback(data)
		if err != nil {
			slog.Warn("skipping unreadable feedback", "error", err)
			continue
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Reset removes the profile, settings and all feedback.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, q := range []string{`DELETE FROM kv`, `DELETE FROM feedback`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to reset: %w", err)
		}
	}
	return tx.Commit()
}

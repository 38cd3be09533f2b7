package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/nutricoach/internal/model"
)

// SQLiteStore implements Store using SQLite. Each session field is one row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS session (
		field      TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (model.Session, error) {
	var sess model.Session
	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM session`)
	if err != nil {
		return sess, err
	}
	defer rows.Close()

	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return sess, err
		}
		if p := fieldPtr(&sess, field); p != nil {
			*p = value
		}
	}
	if err := rows.Err(); err != nil {
		return sess, err
	}
	if sess.Token == "" {
		return model.Session{}, nil
	}
	return sess, nil
}

// Save writes every non-empty field and removes the rest in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, sess model.Session) error {
	if sess.Token == "" {
		return s.Clear(ctx)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	for _, field := range sessionFields {
		value := *fieldPtr(&sess, field)
		if value == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session (field, value, updated_at) VALUES (?, ?, ?)`,
			field, value, now)
		if err != nil {
			return fmt.Errorf("insert %s: %w", field, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var sessionFields = []string{"token", "patientId", "username", "role", "clinicianId"}

func fieldPtr(s *model.Session, field string) *string {
	switch field {
	case "token":
		return &s.Token
	case "patientId":
		return &s.PatientID
	case "username":
		return &s.Username
	case "role":
		return &s.Role
	case "clinicianId":
		return &s.ClinicianID
	}
	return nil
}

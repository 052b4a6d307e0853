package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	"github.com/Waqar080206/usar-ranklist/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS students (
	roll_no         TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	sid             TEXT NOT NULL DEFAULT '',
	programme       TEXT NOT NULL DEFAULT '',
	semester        TEXT NOT NULL DEFAULT '',
	batch           TEXT NOT NULL DEFAULT '',
	max_marks       REAL NOT NULL DEFAULT 0,
	credits_secured REAL NOT NULL DEFAULT 0,
	sgpa            REAL NOT NULL DEFAULT 0,
	has_sgpa        INTEGER NOT NULL DEFAULT 0,
	subjects        TEXT NOT NULL DEFAULT '[]',
	seq             INTEGER
);
CREATE INDEX IF NOT EXISTS idx_students_semester ON students(semester);
CREATE INDEX IF NOT EXISTS idx_students_batch ON students(batch);
`

// SQLiteStore is a Store backed by a SQLite database file. Subject scores
// are kept as a JSON column; every filterable attribute gets its own column.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// WAL keeps concurrent ranklist reads cheap while ingest writes.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Put inserts or replaces a record.
func (s *SQLiteStore) Put(ctx context.Context, rec model.StudentRecord) (bool, error) {
	if rec.RollNo == "" {
		return false, fmt.Errorf("put: empty roll number")
	}
	subjects, err := json.Marshal(rec.Subjects)
	if err != nil {
		return false, fmt.Errorf("marshalling subjects: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM students WHERE roll_no = ?`, rec.RollNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking existing record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO students (roll_no, name, sid, programme, semester, batch, max_marks, credits_secured, sgpa, has_sgpa, subjects, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM students))
		ON CONFLICT(roll_no) DO UPDATE SET
			name = excluded.name, sid = excluded.sid, programme = excluded.programme,
			semester = excluded.semester, batch = excluded.batch,
			max_marks = excluded.max_marks, credits_secured = excluded.credits_secured,
			sgpa = excluded.sgpa, has_sgpa = excluded.has_sgpa, subjects = excluded.subjects`,
		rec.RollNo, rec.Name, rec.SID, rec.Programme, rec.Semester, rec.Batch,
		rec.MaxMarks, rec.CreditsSecured, rec.SGPA, boolToInt(rec.HasSGPA), string(subjects),
	)
	if err != nil {
		return false, fmt.Errorf("upserting record: %w", err)
	}
	metrics.UpdateStoreRecords(s.Count(ctx))
	return exists == 0, nil
}

// Get returns the record for a roll number.
func (s *SQLiteStore) Get(ctx context.Context, rollNo string) (model.StudentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT roll_no, name, sid, programme, semester, batch, max_marks, credits_secured, sgpa, has_sgpa, subjects
		FROM students WHERE roll_no = ?`, rollNo)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudentRecord{}, fmt.Errorf("%w: %s", ErrNotFound, rollNo)
	}
	if err != nil {
		return model.StudentRecord{}, fmt.Errorf("reading record: %w", err)
	}
	return rec, nil
}

// List returns all records ordered by insertion sequence.
func (s *SQLiteStore) List(ctx context.Context) ([]model.StudentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT roll_no, name, sid, programme, semester, batch, max_marks, credits_secured, sgpa, has_sgpa, subjects
		FROM students ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []model.StudentRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM students`).Scan(&n); err != nil {
		return 0
	}
	return n
}

func scanRecord(scan func(dest ...any) error) (model.StudentRecord, error) {
	var rec model.StudentRecord
	var hasSGPA int
	var subjects string
	err := scan(&rec.RollNo, &rec.Name, &rec.SID, &rec.Programme, &rec.Semester, &rec.Batch,
		&rec.MaxMarks, &rec.CreditsSecured, &rec.SGPA, &hasSGPA, &subjects)
	if err != nil {
		return model.StudentRecord{}, err
	}
	rec.HasSGPA = hasSGPA != 0
	if err := json.Unmarshal([]byte(subjects), &rec.Subjects); err != nil {
		return model.StudentRecord{}, fmt.Errorf("unmarshalling subjects: %w", err)
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

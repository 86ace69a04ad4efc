package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// savedAtLayout is fixed width so saved_at sorts as text. Times are UTC.
const savedAtLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore keeps one row per media path with the document as JSON.
type sqliteStore struct {
	db *sql.DB
}

func newSQLiteStore(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	s := &sqliteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return s, nil
}

func (s *sqliteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS autosaves (
		video_path TEXT PRIMARY KEY,
		video_hash INTEGER NOT NULL DEFAULT 0,
		schema_version TEXT NOT NULL,
		annotation_count INTEGER NOT NULL DEFAULT 0,
		saved_at TEXT NOT NULL,
		document JSON NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *sqliteStore) Save(ctx context.Context, doc *Document) error {
	stamp(doc)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	query := `INSERT INTO autosaves (video_path, video_hash, schema_version, annotation_count, saved_at, document)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(video_path) DO UPDATE SET
		video_hash = excluded.video_hash,
		schema_version = excluded.schema_version,
		annotation_count = excluded.annotation_count,
		saved_at = excluded.saved_at,
		document = excluded.document`
	_, err = s.db.ExecContext(ctx, query,
		doc.VideoPath, doc.VideoHash, doc.SchemaVersion, len(doc.Annotations),
		doc.SavedAt.UTC().Format(savedAtLayout), string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context, videoPath string) (*Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM autosaves WHERE video_path = ?`, key(videoPath)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAutosave
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read autosave: %w", err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse autosave: %w", err)
	}
	if err := doc.CheckSchema(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *sqliteStore) Delete(ctx context.Context, videoPath string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM autosaves WHERE video_path = ?`, key(videoPath))
	if err != nil {
		return fmt.Errorf("failed to delete autosave: %w", err)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT video_path, annotation_count, saved_at FROM autosaves ORDER BY saved_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			savedAt string
		)
		if err := rows.Scan(&sum.VideoPath, &sum.Count, &savedAt); err != nil {
			return nil, err
		}
		sum.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"flightrecorder/pkg/db"
	"flightrecorder/pkg/model"
)

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	StateStore
	RecordingStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Recordings ---

const recordingColumns = `id, trigger, started_at, ended_at, frame_count, track_length_m, max_altitude_ft, start_cell, end_cell, saved_at`

func (s *SQLiteStore) SaveRecording(ctx context.Context, rec *model.Recording) error {
	raw, err := json.Marshal(rec.Frames)
	if err != nil {
		return fmt.Errorf("failed to encode frames: %w", err)
	}
	blob, err := compress(raw)
	if err != nil {
		return fmt.Errorf("failed to compress frames: %w", err)
	}

	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	query := `INSERT OR REPLACE INTO recordings (` + recordingColumns + `, frames)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Trigger, rec.StartedAt.UTC(), rec.EndedAt.UTC(),
		rec.FrameCount, rec.TrackLengthM, rec.MaxAltitudeFt,
		rec.StartCell, rec.EndCell, rec.SavedAt.UTC(), blob,
	)
	return err
}

func (s *SQLiteStore) GetRecording(ctx context.Context, id string) (*model.Recording, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordingColumns+`, frames FROM recordings WHERE id = ?`, id)

	var blob []byte
	rec, err := scanRecording(row, &blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(blob) > 0 {
		raw, err := decompress(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress frames: %w", err)
		}
		if err := json.Unmarshal(raw, &rec.Frames); err != nil {
			return nil, fmt.Errorf("failed to decode frames: %w", err)
		}
	}
	return rec, nil
}

func (s *SQLiteStore) ListRecordings(ctx context.Context, limit int) ([]*model.Recording, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordingColumns+` FROM recordings ORDER BY saved_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Recording
	for rows.Next() {
		rec, err := scanRecording(rows, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteRecording(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recordings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) PruneRecordings(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recordings WHERE saved_at < ?", before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecording reads the summary columns, plus the frame blob when blob is non-nil.
func scanRecording(row rowScanner, blob *[]byte) (*model.Recording, error) {
	var rec model.Recording
	var trigger, startCell, endCell sql.NullString
	dest := []any{
		&rec.ID, &trigger, &rec.StartedAt, &rec.EndedAt,
		&rec.FrameCount, &rec.TrackLengthM, &rec.MaxAltitudeFt,
		&startCell, &endCell, &rec.SavedAt,
	}
	if blob != nil {
		dest = append(dest, blob)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.Trigger = trigger.String
	rec.StartCell = startCell.String
	rec.EndCell = endCell.String
	return &rec, nil
}

// --- Compression Pooling ---

var (
	// Pool for gzip writers to reuse flate state
	gzipWriterPool = sync.Pool{
		New: func() interface{} {
			return gzip.NewWriter(io.Discard)
		},
	}
	bufferPool = sync.Pool{
		New: func() interface{} {
			return new(bytes.Buffer)
		},
	}
)

func compress(data []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	w := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	// Must copy because buf is returned to pool
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

package store

import (
	"context"
	"errors"
	"time"

	"flightrecorder/pkg/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// RecordingStore handles saved flight recordings.
type RecordingStore interface {
	SaveRecording(ctx context.Context, rec *model.Recording) error
	// GetRecording returns the recording including its frames.
	GetRecording(ctx context.Context, id string) (*model.Recording, error)
	// ListRecordings returns summaries (no frames), newest first.
	ListRecordings(ctx context.Context, limit int) ([]*model.Recording, error)
	DeleteRecording(ctx context.Context, id string) error
	// PruneRecordings deletes recordings saved before the cutoff.
	PruneRecordings(ctx context.Context, before time.Time) (int64, error)
}

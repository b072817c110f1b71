package store

import (
	"context"
	"time"

	"tasky/model"
)

// Query selects tasks by trash state and, optionally, stage.
type Query struct {
	// Stage restricts results to one stage. Empty means every stage.
	Stage   model.Stage
	Trashed bool
}

// TaskStore is the record store behind the task service. Every mutation touches a
// single record except the bulk trash operations. Implementations return
// apperr.NotFoundError for unknown ids and apperr.StoreUnavailableError for
// every other failure.
type TaskStore interface {
	// Create persists a new task. The task id must already be set.
	Create(ctx context.Context, task *model.Task) error

	// Get returns the task with the given id, trashed or not.
	Get(ctx context.Context, id string) (*model.Task, error)

	// List returns every task matching q in no particular order.
	List(ctx context.Context, q Query) ([]*model.Task, error)

	// Update applies patch to an active task and returns the stored result.
	// A trashed task is reported as not found.
	Update(ctx context.Context, id string, patch model.TaskPatch, at time.Time) (*model.Task, error)

	// AppendSubTask and AppendActivity add one entry to the end of the
	// corresponding sequence. Concurrent appends to one task are serialized.
	AppendSubTask(ctx context.Context, id string, sub model.SubTask, at time.Time) error
	AppendActivity(ctx context.Context, id string, activity model.Activity, at time.Time) error

	// SetTrashed sets the soft-delete flag of one task.
	SetTrashed(ctx context.Context, id string, trashed bool, at time.Time) error

	// RestoreTrashed clears the flag on every trashed task and reports how many changed.
	RestoreTrashed(ctx context.Context, at time.Time) (int, error)

	// Delete removes one task permanently.
	Delete(ctx context.Context, id string) error

	// DeleteTrashed removes every trashed task and reports how many were removed.
	DeleteTrashed(ctx context.Context) (int, error)

	Close() error
}

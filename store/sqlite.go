package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"tasky/apperr"
	"tasky/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	date        TEXT NOT NULL,
	priority    TEXT NOT NULL,
	stage       TEXT NOT NULL,
	is_trashed  INTEGER NOT NULL DEFAULT 0,
	team        TEXT NOT NULL DEFAULT '[]',
	assets      TEXT NOT NULL DEFAULT '[]',
	sub_tasks   TEXT NOT NULL DEFAULT '[]',
	activities  TEXT NOT NULL DEFAULT '[]',
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_trashed_stage ON tasks (is_trashed, stage);
`

const taskColumns = `id, title, date, priority, stage, is_trashed, team, assets, sub_tasks, activities, created_by, created_at, updated_at`

// SQLiteStore persists tasks in a SQLite database. Array fields are stored as JSON text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the tasks table exists. The caller is responsible for calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// One connection serializes every read-modify-write and prevents SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Create(ctx context.Context, t *model.Task) error {
	team, err := encodeJSON("encode team", nonNil(t.Team))
	if err != nil {
		return err
	}
	assets, err := encodeJSON("encode assets", nonNil(t.Assets))
	if err != nil {
		return err
	}
	subTasks, err := encodeJSON("encode sub_tasks", nonNilSubTasks(t.SubTasks))
	if err != nil {
		return err
	}
	activities, err := encodeJSON("encode activities", t.Activities)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Title, formatTime(t.Date), string(t.Priority), string(t.Stage), boolInt(t.IsTrashed),
		team, assets, subTasks, activities,
		t.CreatedBy, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return apperr.Unavailable("insert task", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(id)
	}
	if err != nil {
		return nil, apperr.Unavailable("get task", err)
	}
	return t, nil
}

func (s *SQLiteStore) List(ctx context.Context, q Query) ([]*model.Task, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE is_trashed = ?`)
	args := []any{boolInt(q.Trashed)}
	if q.Stage != "" {
		b.WriteString(" AND stage = ?")
		args = append(args, string(q.Stage))
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, apperr.Unavailable("list tasks", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperr.Unavailable("list tasks", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("list tasks", err)
	}
	return tasks, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, patch model.TaskPatch, at time.Time) (*model.Task, error) {
	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, formatTime(*patch.Date))
	}
	if patch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*patch.Priority))
	}
	if patch.Stage != nil {
		sets = append(sets, "stage = ?")
		args = append(args, string(*patch.Stage))
	}
	if patch.Team != nil {
		team, err := encodeJSON("encode team", nonNil(*patch.Team))
		if err != nil {
			return nil, err
		}
		sets = append(sets, "team = ?")
		args = append(args, team)
	}
	if patch.Assets != nil {
		assets, err := encodeJSON("encode assets", nonNil(*patch.Assets))
		if err != nil {
			return nil, err
		}
		sets = append(sets, "assets = ?")
		args = append(args, assets)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(at), id)

	// Trashed tasks are not updatable; they report NotFound like missing ones.
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ? AND is_trashed = 0`, args...)
	if err := affectedOne(res, err, id, "update task"); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) AppendSubTask(ctx context.Context, id string, sub model.SubTask, at time.Time) error {
	return s.appendJSON(ctx, id, "sub_tasks", at, func(raw string) (string, error) {
		var subs []model.SubTask
		if err := json.Unmarshal([]byte(raw), &subs); err != nil {
			return "", err
		}
		out, err := json.Marshal(append(subs, sub))
		return string(out), err
	})
}

func (s *SQLiteStore) AppendActivity(ctx context.Context, id string, activity model.Activity, at time.Time) error {
	return s.appendJSON(ctx, id, "activities", at, func(raw string) (string, error) {
		var log model.ActivityLog
		if err := json.Unmarshal([]byte(raw), &log); err != nil {
			return "", err
		}
		log.Append(activity)
		out, err := json.Marshal(log)
		return string(out), err
	})
}

// appendJSON rewrites one JSON array column inside a transaction.
func (s *SQLiteStore) appendJSON(ctx context.Context, id, column string, at time.Time, fn func(string) (string, error)) error {
	op := "append " + column
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unavailable(op, err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT `+column+` FROM tasks WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(id)
	}
	if err != nil {
		return apperr.Unavailable(op, err)
	}

	updated, err := fn(raw)
	if err != nil {
		return apperr.Unavailable(op, fmt.Errorf("decode %s: %w", column, err))
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		updated, formatTime(at), id); err != nil {
		return apperr.Unavailable(op, err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Unavailable(op, err)
	}
	return nil
}

func (s *SQLiteStore) SetTrashed(ctx context.Context, id string, trashed bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET is_trashed = ?, updated_at = ? WHERE id = ?`,
		boolInt(trashed), formatTime(at), id)
	return affectedOne(res, err, id, "set trashed")
}

func (s *SQLiteStore) RestoreTrashed(ctx context.Context, at time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET is_trashed = 0, updated_at = ? WHERE is_trashed = 1`, formatTime(at))
	return affectedCount(res, err, "restore trashed")
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return affectedOne(res, err, id, "delete task")
}

func (s *SQLiteStore) DeleteTrashed(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE is_trashed = 1`)
	return affectedCount(res, err, "delete trashed")
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	var date, priority, stage, team, assets, subTasks, activities, createdAt, updatedAt string
	var trashed int

	err := s.Scan(&t.ID, &t.Title, &date, &priority, &stage, &trashed,
		&team, &assets, &subTasks, &activities, &t.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.Priority = model.Priority(priority)
	t.Stage = model.Stage(stage)
	t.IsTrashed = trashed != 0
	if t.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(team), &t.Team); err != nil {
		return nil, fmt.Errorf("decode team: %w", err)
	}
	if err := json.Unmarshal([]byte(assets), &t.Assets); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	if err := json.Unmarshal([]byte(subTasks), &t.SubTasks); err != nil {
		return nil, fmt.Errorf("decode sub_tasks: %w", err)
	}
	if err := json.Unmarshal([]byte(activities), &t.Activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return &t, nil
}

func affectedOne(res sql.Result, err error, id, op string) error {
	n, err := affectedCount(res, err, op)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(id)
	}
	return nil
}

func affectedCount(res sql.Result, err error, op string) (int, error) {
	if err != nil {
		return 0, apperr.Unavailable(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Unavailable(op, err)
	}
	return int(n), nil
}

func encodeJSON(op string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", apperr.Unavailable(op, err)
	}
	return string(b), nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSubTasks(s []model.SubTask) []model.SubTask {
	if s == nil {
		return []model.SubTask{}
	}
	return s
}

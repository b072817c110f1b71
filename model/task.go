package model

import (
	"strings"
	"time"

	"tasky/apperr"
)

type SubTask struct {
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Tag   string    `json:"tag"`
}

type Task struct {
	ID         string      `json:"_id"`
	Title      string      `json:"title"`
	Date       time.Time   `json:"date"`
	Priority   Priority    `json:"priority"`
	Stage      Stage       `json:"stage"`
	IsTrashed  bool        `json:"isTrashed"`
	Team       []string    `json:"team"`
	Assets     []string    `json:"assets"`
	SubTasks   []SubTask   `json:"subTasks"`
	Activities ActivityLog `json:"activities"`
	CreatedBy  string      `json:"createdBy"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy so callers never alias another task's slices.
func (t *Task) Clone() *Task {
	c := *t
	c.Team = append([]string{}, t.Team...)
	c.Assets = append([]string{}, t.Assets...)
	c.SubTasks = append([]SubTask{}, t.SubTasks...)
	c.Activities = NewActivityLog(t.Activities.Entries()...)
	return &c
}

// TaskPatch carries the client-settable fields of an update. Nil means unchanged.
type TaskPatch struct {
	Title    *string
	Date     *time.Time
	Priority *Priority
	Stage    *Stage
	Team     *[]string
	Assets   *[]string
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Date == nil && p.Priority == nil &&
		p.Stage == nil && p.Team == nil && p.Assets == nil
}

// Apply copies the set fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Stage != nil {
		t.Stage = *p.Stage
	}
	if p.Team != nil {
		t.Team = append([]string{}, (*p.Team)...)
	}
	if p.Assets != nil {
		t.Assets = append([]string{}, (*p.Assets)...)
	}
}

const dateOnly = "2006-01-02"

// ParseDate accepts an RFC3339 timestamp or a plain calendar date.
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.Validation(field, "date is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "%q is not an RFC3339 timestamp or YYYY-MM-DD date", raw)
	}
	return t, nil
}

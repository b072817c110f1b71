package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasky/apperr"
	"tasky/model"
	"tasky/store"
)

// DefaultDeleteAllSentinel is the task id that addresses every trashed task.
const DefaultDeleteAllSentinel = "all"

// DefaultPreviewLimit is the length of the dashboard preview lists.
const DefaultPreviewLimit = 10

// TaskService applies the task lifecycle rules on top of a record store.
// It keeps no task state between calls.
type TaskService struct {
	store    store.TaskStore
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	allID    string
	previewN int
}

type Option func(*TaskService)

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskService) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *TaskService) { s.newID = newID }
}

// WithDeleteAllSentinel sets the id that makes delete and restore act on every trashed task.
func WithDeleteAllSentinel(id string) Option {
	return func(s *TaskService) {
		if id != "" {
			s.allID = id
		}
	}
}

func WithPreviewLimit(n int) Option {
	return func(s *TaskService) {
		if n > 0 {
			s.previewN = n
		}
	}
}

func NewTaskService(st store.TaskStore, opts ...Option) *TaskService {
	s := &TaskService{
		store:    st,
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
		allID:    DefaultDeleteAllSentinel,
		previewN: DefaultPreviewLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateTaskInput struct {
	Title    string
	Date     time.Time
	Priority model.Priority
	// Stage defaults to todo when empty.
	Stage  model.Stage
	Team   []string
	Assets []string
}

func (s *TaskService) CreateTask(ctx context.Context, actor string, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title", "title is required")
	}
	if in.Date.IsZero() {
		return nil, apperr.Validation("date", "date is required")
	}
	if !in.Priority.Valid() {
		return nil, apperr.Validation("priority", "%q is not one of low, normal, medium, high", in.Priority)
	}
	stage := in.Stage
	if stage == "" {
		stage = model.StageTodo
	}
	if !stage.Valid() {
		return nil, apperr.Validation("stage", "%q is not one of todo, in progress, completed", in.Stage)
	}

	now := s.now()
	task := &model.Task{
		ID:        s.newID(),
		Title:     title,
		Date:      in.Date,
		Priority:  in.Priority,
		Stage:     stage,
		Team:      append([]string{}, in.Team...),
		Assets:    append([]string{}, in.Assets...),
		SubTasks:  []model.SubTask{},
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.Activities.Append(model.Activity{
		Type:     model.ActivityAssigned,
		Activity: assignmentText(task),
		Date:     now,
		By:       actor,
	})

	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("task created", slog.String("id", task.ID), slog.String("by", actor))
	return task, nil
}

func assignmentText(t *model.Task) string {
	who := "you"
	if n := len(t.Team); n > 1 {
		who = fmt.Sprintf("you and %d others", n-1)
	}
	return fmt.Sprintf("New task has been assigned to %s. The task priority is set a %s priority, so check and act accordingly. The task date is %s.",
		who, t.Priority, t.Date.Format("Mon Jan 2 2006"))
}

// GetTask returns a task whether or not it is trashed.
func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.store.Get(ctx, id)
}

// activeTask loads a task and hides it when trashed.
func (s *TaskService) activeTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsTrashed {
		return nil, apperr.NotFound(id)
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if patch.Empty() {
		return nil, apperr.Validation("", "no fields to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperr.Validation("title", "title must not be empty")
		}
		patch.Title = &title
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, apperr.Validation("date", "date must not be empty")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperr.Validation("priority", "%q is not one of low, normal, medium, high", *patch.Priority)
	}
	if patch.Stage != nil && !patch.Stage.Valid() {
		return nil, apperr.Validation("stage", "%q is not one of todo, in progress, completed", *patch.Stage)
	}

	// Store.Update reports trashed tasks as not found.
	task, err := s.store.Update(ctx, id, patch, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("task updated", slog.String("id", id))
	return task, nil
}

func (s *TaskService) AddSubtask(ctx context.Context, id string, sub model.SubTask) (*model.Task, error) {
	sub.Title = strings.TrimSpace(sub.Title)
	if sub.Title == "" {
		return nil, apperr.Validation("title", "subtask title is required")
	}
	if err := s.store.AppendSubTask(ctx, id, sub, s.now()); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

type PostActivityInput struct {
	Type     model.ActivityType
	Activity string
}

// PostActivity appends an entry stamped with the server time and the acting user.
func (s *TaskService) PostActivity(ctx context.Context, id, actor string, in PostActivityInput) (*model.Task, error) {
	if !in.Type.Valid() {
		return nil, apperr.Validation("type", "%q is not a known activity type", in.Type)
	}
	now := s.now()
	entry := model.Activity{
		Type:     in.Type,
		Activity: strings.TrimSpace(in.Activity),
		Date:     now,
		By:       actor,
	}
	if err := s.store.AppendActivity(ctx, id, entry, now); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// DuplicateTask copies an active task under a new id with an empty activity log.
func (s *TaskService) DuplicateTask(ctx context.Context, id, actor string) (*model.Task, error) {
	src, err := s.activeTask(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dup := src.Clone()
	dup.ID = s.newID()
	dup.IsTrashed = false
	dup.Activities = model.ActivityLog{}
	dup.CreatedBy = actor
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := s.store.Create(ctx, dup); err != nil {
		return nil, err
	}
	s.logger.Info("task duplicated", slog.String("source", id), slog.String("id", dup.ID))
	return dup, nil
}

// TrashTask moves a single task to the trash.
func (s *TaskService) TrashTask(ctx context.Context, id string) (*DeleteRestoreResult, error) {
	return s.DeleteRestore(ctx, id, model.ActionTrash)
}

// DeleteRestoreResult reports what a delete-restore call changed.
type DeleteRestoreResult struct {
	Action   model.ActionType `json:"action"`
	All      bool             `json:"all"`
	Affected int              `json:"affected"`
}

// DeleteRestore drives the trash state machine. The configured sentinel id
// addresses every trashed task for restore and delete.
func (s *TaskService) DeleteRestore(ctx context.Context, id string, action model.ActionType) (*DeleteRestoreResult, error) {
	if !action.Valid() {
		return nil, apperr.Validation("actionType", "%q is not one of trash, restore, delete", action)
	}
	id = strings.TrimSpace(id)
	all := id == s.allID
	res := &DeleteRestoreResult{Action: action, All: all}

	var err error
	switch {
	case all && action == model.ActionTrash:
		return nil, apperr.Validation("id", "trash needs a single task id")
	case all && action == model.ActionRestore:
		res.Affected, err = s.store.RestoreTrashed(ctx, s.now())
	case all && action == model.ActionDelete:
		res.Affected, err = s.store.DeleteTrashed(ctx)
	case id == "":
		return nil, apperr.Validation("id", "task id is required")
	case action == model.ActionTrash:
		err = s.store.SetTrashed(ctx, id, true, s.now())
		res.Affected = 1
	case action == model.ActionRestore:
		err = s.store.SetTrashed(ctx, id, false, s.now())
		res.Affected = 1
	case action == model.ActionDelete:
		err = s.store.Delete(ctx, id)
		res.Affected = 1
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("task trash state changed",
		slog.String("action", string(action)),
		slog.String("id", id),
		slog.Int("affected", res.Affected))
	return res, nil
}

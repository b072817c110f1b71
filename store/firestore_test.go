package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tasky/apperr"
	"tasky/model"
)

func TestClassify(t *testing.T) {
	err := classify("get task", "t1", status.Error(codes.NotFound, "no document"))
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "t1", nf.ID)

	err = classify("list tasks", "", status.Error(codes.Unavailable, "connection refused"))
	assert.True(t, apperr.IsUnavailable(err))

	cause := errors.New("boom")
	err = classify("update task", "t1", cause)
	assert.True(t, apperr.IsUnavailable(err))
	assert.ErrorIs(t, err, cause)

	// Already-classified errors pass through.
	orig := apperr.NotFound("t2")
	assert.Same(t, orig, classify("append activity", "t9", orig))
}

func TestTaskDocumentConversion(t *testing.T) {
	now := time.Date(2024, 2, 9, 12, 0, 0, 0, time.UTC)
	task := &model.Task{
		ID:        "t1",
		Title:     "Bug Fixing",
		Date:      now,
		Priority:  model.PriorityHigh,
		Stage:     model.StageInProgress,
		Team:      []string{"u1", "u2"},
		SubTasks:  []model.SubTask{{Title: "Check login", Date: now, Tag: "bug"}},
		CreatedBy: "u1",
		CreatedAt: now,
		UpdatedAt: now,
		Activities: model.NewActivityLog(
			model.Activity{Type: model.ActivityAssigned, Activity: "assigned", Date: now, By: "u1"},
			model.Activity{Type: model.ActivityBug, Activity: "found a bug", Date: now, By: "u2"},
		),
	}

	d := toDocument(task)
	assert.Equal(t, "in progress", d.Stage)
	assert.False(t, d.IsTrashed)
	assert.NotNil(t, d.Assets)
	require.Len(t, d.Activities, 2)

	back := fromDocument(d)
	assert.Equal(t, task.ID, back.ID)
	assert.Equal(t, task.Stage, back.Stage)
	assert.Equal(t, task.Team, back.Team)
	assert.Equal(t, task.SubTasks, back.SubTasks)
	assert.Equal(t, task.Activities.Entries(), back.Activities.Entries())
}

func TestFromDocument_EmptySequences(t *testing.T) {
	now := time.Date(2024, 2, 9, 12, 0, 0, 0, time.UTC)
	task := fromDocument(toDocument(&model.Task{
		ID:        "t1",
		Title:     "Empty",
		Date:      now,
		Priority:  model.PriorityLow,
		Stage:     model.StageTodo,
		SubTasks:  []model.SubTask{},
		CreatedAt: now,
		UpdatedAt: now,
	}))

	raw, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subTasks":[]`)
	assert.Contains(t, string(raw), `"team":[]`)
	assert.Contains(t, string(raw), `"assets":[]`)
	assert.Contains(t, string(raw), `"activities":[]`)

	// Documents written without the array fields decode the same way.
	bare := fromDocument(&taskDocument{TaskID: "t2", Title: "Bare"})
	assert.NotNil(t, bare.SubTasks)
	assert.NotNil(t, bare.Team)
	assert.NotNil(t, bare.Assets)
}

type fakeJob struct {
	err error
}

func (j fakeJob) Results() (*firestore.WriteResult, error) {
	if j.err != nil {
		return nil, j.err
	}
	return &firestore.WriteResult{}, nil
}

func TestCollectJobs(t *testing.T) {
	n, err := collectJobs("delete trashed", []bulkJob{fakeJob{}, fakeJob{}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	denied := status.Error(codes.PermissionDenied, "denied")
	n, err = collectJobs("delete trashed", []bulkJob{fakeJob{}, fakeJob{err: denied}, fakeJob{}}, nil)
	assert.Equal(t, 2, n)
	assert.True(t, apperr.IsUnavailable(err))
	assert.ErrorIs(t, err, denied)
	assert.ErrorContains(t, err, "1 of 3 writes failed")

	queueErr := apperr.Unavailable("restore trashed", errors.New("iterator broke"))
	n, err = collectJobs("restore trashed", []bulkJob{fakeJob{}}, queueErr)
	assert.Equal(t, 1, n)
	assert.Same(t, queueErr, err)

	n, err = collectJobs("restore trashed", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

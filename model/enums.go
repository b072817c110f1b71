package model

import (
	"strings"

	"tasky/apperr"
)

// Stage is the workflow state of a task.
type Stage string

const (
	StageTodo       Stage = "todo"
	StageInProgress Stage = "in progress"
	StageCompleted  Stage = "completed"
)

// Stages lists every stage in workflow order.
var Stages = []Stage{StageTodo, StageInProgress, StageCompleted}

func (s Stage) Valid() bool {
	switch s {
	case StageTodo, StageInProgress, StageCompleted:
		return true
	}
	return false
}

func (s Stage) String() string { return string(s) }

// ParseStage accepts the stage text case-insensitively.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", apperr.Validation("stage", "%q is not one of todo, in progress, completed", raw)
	}
	return s, nil
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityNormal, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", apperr.Validation("priority", "%q is not one of low, normal, medium, high", raw)
	}
	return p, nil
}

// ActivityType classifies an activity entry.
type ActivityType string

const (
	ActivityAssigned   ActivityType = "assigned"
	ActivityStarted    ActivityType = "started"
	ActivityInProgress ActivityType = "in progress"
	ActivityBug        ActivityType = "bug"
	ActivityCompleted  ActivityType = "completed"
	ActivityCommented  ActivityType = "commented"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityAssigned, ActivityStarted, ActivityInProgress, ActivityBug, ActivityCompleted, ActivityCommented:
		return true
	}
	return false
}

func ParseActivityType(raw string) (ActivityType, error) {
	t := ActivityType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", apperr.Validation("type", "%q is not a known activity type", raw)
	}
	return t, nil
}

// ActionType selects the operation of the delete-restore endpoint.
type ActionType string

const (
	ActionTrash   ActionType = "trash"
	ActionRestore ActionType = "restore"
	ActionDelete  ActionType = "delete"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionTrash, ActionRestore, ActionDelete:
		return true
	}
	return false
}

func ParseActionType(raw string) (ActionType, error) {
	a := ActionType(strings.ToLower(strings.TrimSpace(raw)))
	if !a.Valid() {
		return "", apperr.Validation("actionType", "%q is not one of trash, restore, delete", raw)
	}
	return a, nil
}

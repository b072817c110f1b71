package services

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"tasky/apperr"
	"tasky/model"
	"tasky/store"
)

// Order selects the sort order of a listing.
type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
	OrderDue    Order = "due"
)

func ParseOrder(raw string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(raw))); o {
	case "":
		return OrderNewest, nil
	case OrderNewest, OrderOldest, OrderDue:
		return o, nil
	}
	return "", apperr.Validation("order", "%q is not one of newest, oldest, due", raw)
}

// ListFilter narrows a task listing. All set filters must match.
type ListFilter struct {
	Stage   model.Stage
	Trashed bool
	Search  string
	Order   Order
}

// ListTasks returns the tasks matching f. Trashed tasks are only returned when
// f.Trashed is set, and then exclusively.
func (s *TaskService) ListTasks(ctx context.Context, f ListFilter) ([]*model.Task, error) {
	if f.Stage != "" && !f.Stage.Valid() {
		return nil, apperr.Validation("stage", "%q is not one of todo, in progress, completed", f.Stage)
	}
	if f.Order == "" {
		f.Order = OrderNewest
	}
	less, ok := orderings[f.Order]
	if !ok {
		return nil, apperr.Validation("order", "%q is not one of newest, oldest, due", f.Order)
	}

	tasks, err := s.store.List(ctx, store.Query{Stage: f.Stage, Trashed: f.Trashed})
	if err != nil {
		return nil, err
	}

	out := make([]*model.Task, 0, len(tasks))
	match := searchMatcher(f.Search)
	for _, t := range tasks {
		// The store already filtered, but a store must never leak the other trash state.
		if t.IsTrashed != f.Trashed {
			continue
		}
		if match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

var orderings = map[Order]func(a, b *model.Task) bool{
	OrderNewest: func(a, b *model.Task) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	},
	OrderOldest: func(a, b *model.Task) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	},
	OrderDue: func(a, b *model.Task) bool {
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	},
}

// searchMatcher matches the term against title, stage and priority text using
// Unicode case folding. An empty term matches everything.
func searchMatcher(term string) func(*model.Task) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return func(*model.Task) bool { return true }
	}
	fold := cases.Fold()
	needle := fold.String(term)
	return func(t *model.Task) bool {
		for _, field := range []string{t.Title, string(t.Stage), string(t.Priority)} {
			if strings.Contains(fold.String(field), needle) {
				return true
			}
		}
		return false
	}
}

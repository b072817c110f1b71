package services

import (
	"context"
	"sort"

	"tasky/model"
	"tasky/store"
)

// ComputeStatistics summarizes every active task. It only reads from the store.
func (s *TaskService) ComputeStatistics(ctx context.Context) (*model.DashboardStatistics, error) {
	tasks, err := s.store.List(ctx, store.Query{})
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStatistics{
		Tasks:            make(map[string]int, len(model.Stages)),
		Priorities:       make(map[string]int, len(model.Priorities)),
		GraphData:        make([]model.ChartPoint, 0, len(model.Priorities)),
		RecentTasks:      []*model.Task{},
		RecentActivities: []model.RecentActivity{},
	}
	for _, st := range model.Stages {
		stats.Tasks[string(st)] = 0
	}
	for _, p := range model.Priorities {
		stats.Priorities[string(p)] = 0
	}

	active := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsTrashed {
			continue
		}
		active = append(active, t)
		stats.Tasks[string(t.Stage)]++
		stats.Priorities[string(t.Priority)]++
		for _, a := range t.Activities.Entries() {
			stats.RecentActivities = append(stats.RecentActivities, model.RecentActivity{
				TaskID:    t.ID,
				TaskTitle: t.Title,
				Activity:  a,
			})
		}
	}
	stats.TotalTasks = len(active)

	for _, p := range model.Priorities {
		stats.GraphData = append(stats.GraphData, model.ChartPoint{Name: string(p), Total: stats.Priorities[string(p)]})
	}

	sort.SliceStable(active, func(i, j int) bool { return orderings[OrderNewest](active[i], active[j]) })
	stats.RecentTasks = append(stats.RecentTasks, active[:min(len(active), s.previewN)]...)

	acts := stats.RecentActivities
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].Date.After(acts[j].Date) })
	stats.RecentActivities = acts[:min(len(acts), s.previewN)]

	return stats, nil
}

package model

// ChartPoint is one bar of the priority chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// RecentActivity is an activity entry together with the task it belongs to.
type RecentActivity struct {
	TaskID    string `json:"taskId"`
	TaskTitle string `json:"taskTitle"`
	Activity
}

type DashboardStatistics struct {
	TotalTasks       int              `json:"totalTasks"`
	Tasks            map[string]int   `json:"tasks"`
	Priorities       map[string]int   `json:"priorities"`
	GraphData        []ChartPoint     `json:"graphData"`
	RecentTasks      []*Task          `json:"recentTasks"`
	RecentActivities []RecentActivity `json:"recentActivities"`
}

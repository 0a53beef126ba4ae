package service

import (
	"taskpilot/internal/model"
)

// TaskStats 任务整体进度
type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	NotStarted int `json:"notStarted"`
	Failed     int `json:"failed"`
}

// ComputeTaskStats 按状态计数；状态只可能是四种之一时各项之和等于 Total
func ComputeTaskStats(tasks []model.Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.TaskStatusCompleted:
			stats.Completed++
		case model.TaskStatusInProgress:
			stats.InProgress++
		case model.TaskStatusNotStarted:
			stats.NotStarted++
		case model.TaskStatusFailed:
			stats.Failed++
		}
	}
	return stats
}


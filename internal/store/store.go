// Package store 持久化层：任务、操作日志、聊天记录
package store

import (
	"context"
	"errors"
	"time"

	"taskpilot/internal/model"
)

var ErrNotFound = errors.New("record not found")

// DefaultChatLimit 聊天记录默认条数
const DefaultChatLimit = 50

type TaskStore interface {
	// ListTasks 按创建时间升序
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// CreateTask 写入任务，createdAt 与 updatedAt 取同一时刻
	CreateTask(ctx context.Context, task *model.Task) error
	// UpdateTask 只修改 patch 中非 nil 的字段，并刷新 updatedAt
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type ActivityStore interface {
	// ListActivities 按创建时间倒序
	ListActivities(ctx context.Context, taskID string) ([]model.Activity, error)
	CreateActivity(ctx context.Context, activity *model.Activity) error
}

type ChatStore interface {
	// ListChatMessages 返回最近 limit 条，按创建时间倒序
	ListChatMessages(ctx context.Context, limit int) ([]model.ChatMessage, error)
	CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error
}

type Store interface {
	TaskStore
	ActivityStore
	ChatStore
}

// nextUpdatedAt 保证 updatedAt 不回退
func nextUpdatedAt(prev time.Time) time.Time {
	now := time.Now()
	if now.Before(prev) {
		return prev
	}
	return now
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

// TaskService REST 接口背后的任务增删改，负责写操作日志
type TaskService struct {
	tasks      store.TaskStore
	activities store.ActivityStore
}

func NewTaskService(tasks store.TaskStore, activities store.ActivityStore) *TaskService {
	return &TaskService{tasks: tasks, activities: activities}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.tasks.ListTasks(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

// CreateTask 创建任务并记录 created 日志
func (s *TaskService) CreateTask(ctx context.Context, task *model.Task) error {
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return err
	}
	return s.activities.CreateActivity(ctx, &model.Activity{
		TaskID:      task.ID,
		Type:        model.ActivityCreated,
		Description: fmt.Sprintf("Task %q created", task.Title),
		Remarks:     task.Description,
		UserID:      model.ActorSystem,
	})
}

// UpdateTask 任务不存在时返回 store.ErrNotFound 且不写日志
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	prev, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	activityType := model.ActivityUpdated
	if patch.Status != nil {
		activityType = model.ActivityStatusChange
	}
	if err := s.activities.CreateActivity(ctx, &model.Activity{
		TaskID:      updated.ID,
		Type:        activityType,
		Description: "Task updated: " + DescribeChanges(prev, patch),
		Remarks:     model.StringPtr("Updated by user"),
		UserID:      model.ActorUser,
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.DeleteTask(ctx, id)
}

func (s *TaskService) ListActivities(ctx context.Context, taskID string) ([]model.Activity, error) {
	return s.activities.ListActivities(ctx, taskID)
}

// AddActivity 手工追加日志，任务必须存在
func (s *TaskService) AddActivity(ctx context.Context, activity *model.Activity) error {
	if _, err := s.tasks.GetTask(ctx, activity.TaskID); err != nil {
		return err
	}
	if activity.UserID == "" {
		activity.UserID = model.ActorUser
	}
	return s.activities.CreateActivity(ctx, activity)
}

// DescribeChanges 生成 "字段: 旧值 → 新值" 形式的变更描述
func DescribeChanges(prev *model.Task, patch model.TaskPatch) string {
	var changes []string
	add := func(field, oldValue, newValue string) {
		changes = append(changes, fmt.Sprintf("%s: %s → %s", field, oldValue, newValue))
	}

	if patch.Title != nil {
		add("title", prev.Title, *patch.Title)
	}
	if patch.Description != nil {
		add("description", optional(prev.Description), *patch.Description)
	}
	if patch.Status != nil {
		add("status", string(prev.Status), string(*patch.Status))
	}
	if patch.Priority != nil {
		add("priority", string(prev.Priority), string(*patch.Priority))
	}
	if patch.AssignedTo != nil {
		add("assignedTo", optional(prev.AssignedTo), *patch.AssignedTo)
	}
	if patch.DueDate != nil {
		add("dueDate", optionalTime(prev.DueDate), patch.DueDate.Format(time.RFC3339))
	}
	return strings.Join(changes, ", ")
}

func optional(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(time.RFC3339)
}

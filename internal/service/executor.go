package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

// ActionHandler 每个动作一个方法；新增动作时所有实现都必须补齐，否则编译不过
type ActionHandler interface {
	Create(ctx context.Context, op Operation, message string) (*OperationResult, error)
	Update(ctx context.Context, op Operation, message string) (*OperationResult, error)
	Complete(ctx context.Context, op Operation, message string) (*OperationResult, error)
	Delete(ctx context.Context, op Operation, message string) (*OperationResult, error)
	AddRemark(ctx context.Context, op Operation, message string) (*OperationResult, error)
	GetStatus(ctx context.Context, op Operation, message string) (*OperationResult, error)
	ListTasks(ctx context.Context, op Operation, message string) (*OperationResult, error)
}

// Dispatch 按 action 分发；未知 action 不是错误，而是失败结果
func Dispatch(ctx context.Context, h ActionHandler, op Operation, message string) (*OperationResult, error) {
	switch op.Action {
	case ActionCreate:
		return h.Create(ctx, op, message)
	case ActionUpdate:
		return h.Update(ctx, op, message)
	case ActionComplete:
		return h.Complete(ctx, op, message)
	case ActionDelete:
		return h.Delete(ctx, op, message)
	case ActionAddRemark:
		return h.AddRemark(ctx, op, message)
	case ActionGetStatus:
		return h.GetStatus(ctx, op, message)
	case ActionListTasks:
		return h.ListTasks(ctx, op, message)
	default:
		return &OperationResult{Success: false, Error: errUnknownAction}, nil
	}
}

// OperationExecutor 聊天编排依赖的执行能力
type OperationExecutor interface {
	Execute(ctx context.Context, op Operation, message string) (*OperationResult, error)
}

// Executor 把操作落到任务/日志存储上；存储错误原样返回，由调用方折叠进结果
type Executor struct {
	tasks      store.TaskStore
	activities store.ActivityStore
}

func NewExecutor(tasks store.TaskStore, activities store.ActivityStore) *Executor {
	return &Executor{tasks: tasks, activities: activities}
}

var (
	_ ActionHandler     = (*Executor)(nil)
	_ OperationExecutor = (*Executor)(nil)
)

func (e *Executor) Execute(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	return Dispatch(ctx, e, op, message)
}

func (e *Executor) Create(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	if op.Title == "" {
		return &OperationResult{Success: false}, nil
	}

	task := &model.Task{
		Title:    op.Title,
		Status:   model.TaskStatusNotStarted,
		Priority: model.TaskPriorityMedium,
	}
	if op.Description != "" {
		task.Description = model.StringPtr(op.Description)
	}
	if s := model.TaskStatus(op.Status); s.Valid() {
		task.Status = s
	}
	if p := model.TaskPriority(op.Priority); p.Valid() {
		task.Priority = p
	}
	if op.AssignedTo != "" {
		task.AssignedTo = model.StringPtr(op.AssignedTo)
	}
	if op.DueDate != "" {
		if due, ok := ParseDueDate(op.DueDate); ok {
			task.DueDate = &due
		} else {
			log.Printf("[executor] 忽略无法解析的 dueDate=%q", op.DueDate)
		}
	}

	if err := e.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	if err := e.activities.CreateActivity(ctx, &model.Activity{
		TaskID:      task.ID,
		Type:        model.ActivityCreated,
		Description: "Task created via AI assistant",
		Remarks:     model.StringPtr(fmt.Sprintf("Created from chat: %q", message)),
		UserID:      model.ActorAIAssistant,
	}); err != nil {
		return nil, err
	}

	return &OperationResult{Success: true, Task: task}, nil
}

// Update 只带上非空字段；空字符串与未提供无法区分
func (e *Executor) Update(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	if op.TaskID == "" {
		return &OperationResult{Success: false}, nil
	}

	patch := buildPatch(op)
	id, err := e.resolveTaskID(ctx, op.TaskID)
	if err != nil {
		return nil, err
	}

	prev, err := e.tasks.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return &OperationResult{Success: true}, nil
	}
	if err != nil {
		return nil, err
	}

	updated, err := e.tasks.UpdateTask(ctx, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return &OperationResult{Success: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if !patch.Empty() {
		activityType := model.ActivityUpdated
		if patch.Status != nil {
			activityType = model.ActivityStatusChange
		}
		if err := e.activities.CreateActivity(ctx, &model.Activity{
			TaskID:      updated.ID,
			Type:        activityType,
			Description: "Task updated via AI assistant: " + DescribeChanges(prev, patch),
			Remarks:     model.StringPtr(fmt.Sprintf("Updated from chat: %q", message)),
			UserID:      model.ActorAIAssistant,
		}); err != nil {
			return nil, err
		}
	}

	return &OperationResult{Success: true, Task: updated}, nil
}

// Complete 可重复执行，每次都会追加一条 completed 日志
func (e *Executor) Complete(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	if op.TaskID == "" {
		return &OperationResult{Success: false}, nil
	}

	id, err := e.resolveTaskID(ctx, op.TaskID)
	if err != nil {
		return nil, err
	}

	status := model.TaskStatusCompleted
	task, err := e.tasks.UpdateTask(ctx, id, model.TaskPatch{Status: &status})
	if errors.Is(err, store.ErrNotFound) {
		return &OperationResult{Success: false, Error: errTaskNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := e.activities.CreateActivity(ctx, &model.Activity{
		TaskID:      task.ID,
		Type:        model.ActivityCompleted,
		Description: "Task marked as completed via AI assistant",
		Remarks:     model.StringPtr(fmt.Sprintf("Completed from chat: %q", message)),
		UserID:      model.ActorAIAssistant,
	}); err != nil {
		return nil, err
	}

	return &OperationResult{Success: true, Task: task}, nil
}

// Delete 真删除任务，操作日志保留
func (e *Executor) Delete(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	if op.TaskID == "" {
		return &OperationResult{Success: false}, nil
	}

	id, err := e.resolveTaskID(ctx, op.TaskID)
	if err != nil {
		return nil, err
	}

	task, err := e.tasks.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return &OperationResult{Success: false, Error: errTaskNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := e.tasks.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &OperationResult{Success: false, Error: errTaskNotFound}, nil
		}
		return nil, err
	}

	return &OperationResult{Success: true, Task: task}, nil
}

func (e *Executor) AddRemark(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	if op.TaskID == "" || op.Remarks == "" {
		return &OperationResult{Success: false}, nil
	}

	id, err := e.resolveTaskID(ctx, op.TaskID)
	if err != nil {
		return nil, err
	}
	if _, err := e.tasks.GetTask(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &OperationResult{Success: false, Error: errTaskNotFound}, nil
		}
		return nil, err
	}

	activity := &model.Activity{
		TaskID:      id,
		Type:        model.ActivityComment,
		Description: "Comment added via AI assistant",
		Remarks:     model.StringPtr(op.Remarks),
		UserID:      model.ActorAIAssistant,
	}
	if err := e.activities.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}

	return &OperationResult{Success: true, Activity: activity}, nil
}

func (e *Executor) ListTasks(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	tasks, err := e.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return &OperationResult{Success: true, Tasks: tasks}, nil
}

// GetStatus 指定任务时返回任务及其日志，否则返回整体统计
func (e *Executor) GetStatus(ctx context.Context, op Operation, message string) (*OperationResult, error) {
	if op.TaskID != "" {
		id, err := e.resolveTaskID(ctx, op.TaskID)
		if err != nil {
			return nil, err
		}

		result := &OperationResult{Success: true}
		task, err := e.tasks.GetTask(ctx, id)
		switch {
		case err == nil:
			result.Task = task
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}

		activities, err := e.activities.ListActivities(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Activities = activities
		return result, nil
	}

	tasks, err := e.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeTaskStats(tasks)
	return &OperationResult{Success: true, Stats: &stats, Tasks: tasks}, nil
}

// resolveTaskID 依次按 id、列表序号（从1开始）、标题匹配；都不命中时原样返回
func (e *Executor) resolveTaskID(ctx context.Context, ref string) (string, error) {
	if _, err := e.tasks.GetTask(ctx, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	tasks, err := e.tasks.ListTasks(ctx)
	if err != nil {
		return "", err
	}

	num := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(ref), "task"))
	num = strings.TrimPrefix(num, "#")
	// 超出范围的数字继续按标题匹配，例如 "2024"
	if n, err := strconv.Atoi(num); err == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1].ID, nil
	}

	for _, t := range tasks {
		if strings.EqualFold(t.Title, ref) {
			return t.ID, nil
		}
	}

	lower := strings.ToLower(ref)
	matched := ""
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), lower) {
			if matched != "" {
				// 多个候选时不猜
				return ref, nil
			}
			matched = t.ID
		}
	}
	if matched != "" {
		return matched, nil
	}
	return ref, nil
}

func buildPatch(op Operation) model.TaskPatch {
	var patch model.TaskPatch
	if op.Title != "" {
		patch.Title = model.StringPtr(op.Title)
	}
	if op.Description != "" {
		patch.Description = model.StringPtr(op.Description)
	}
	if s := model.TaskStatus(op.Status); s.Valid() {
		patch.Status = &s
	}
	if p := model.TaskPriority(op.Priority); p.Valid() {
		patch.Priority = &p
	}
	if op.AssignedTo != "" {
		patch.AssignedTo = model.StringPtr(op.AssignedTo)
	}
	if op.DueDate != "" {
		if due, ok := ParseDueDate(op.DueDate); ok {
			patch.DueDate = &due
		}
	}
	return patch
}

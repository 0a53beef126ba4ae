package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskpilot/internal/model"

	"gorm.io/gorm"
)

// GormStore 基于 gorm 的实现（mysql/postgres/sqlite）
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("查询任务列表失败: %w", err)
	}
	return tasks, nil
}

func (s *GormStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	return &task, nil
}

func (s *GormStore) CreateTask(ctx context.Context, task *model.Task) error {
	applyTaskDefaults(task)
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("保存任务失败: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	prev, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	cols := patch.Columns()
	cols["updated_at"] = nextUpdatedAt(prev.UpdatedAt)

	// 不看 RowsAffected：mysql 在值未变化时返回 0
	if err := s.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", id).
		Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("更新任务失败: %w", err)
	}
	// 并发删除时这里会返回 ErrNotFound
	return s.GetTask(ctx, id)
}

func (s *GormStore) DeleteTask(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("删除任务失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListActivities(ctx context.Context, taskID string) ([]model.Activity, error) {
	var activities []model.Activity
	if err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("查询操作日志失败: %w", err)
	}
	return activities, nil
}

func (s *GormStore) CreateActivity(ctx context.Context, activity *model.Activity) error {
	activity.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("保存操作日志失败: %w", err)
	}
	return nil
}

func (s *GormStore) ListChatMessages(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	var messages []model.ChatMessage
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("查询聊天记录失败: %w", err)
	}
	return messages, nil
}

func (s *GormStore) CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	msg.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("保存聊天记录失败: %w", err)
	}
	return nil
}

func applyTaskDefaults(task *model.Task) {
	if task.Status == "" {
		task.Status = model.TaskStatusNotStarted
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityMedium
	}
	// 依赖字段预留，始终为空
	task.Dependencies = nil
}

package store

import (
	"context"
	"sync"
	"time"

	"taskpilot/internal/model"

	"github.com/google/uuid"
)

// MemoryStore 进程内实现，用于测试和 driver=memory 的本地演示
type MemoryStore struct {
	mu         sync.RWMutex
	tasks      map[string]*model.Task
	taskOrder  []string
	activities []model.Activity
	messages   []model.ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*model.Task),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		if t, ok := s.tasks[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) CreateTask(ctx context.Context, task *model.Task) error {
	applyTaskDefaults(task)
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.tasks[task.ID] = &cp
	s.taskOrder = append(s.taskOrder, task.ID)
	return nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(t)
	t.UpdatedAt = nextUpdatedAt(t.UpdatedAt)
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	for i, tid := range s.taskOrder {
		if tid == id {
			s.taskOrder = append(s.taskOrder[:i], s.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ListActivities(ctx context.Context, taskID string) ([]model.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Activity{}
	for i := len(s.activities) - 1; i >= 0; i-- {
		if s.activities[i].TaskID == taskID {
			out = append(out, s.activities[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateActivity(ctx context.Context, activity *model.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.CreatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *MemoryStore) ListChatMessages(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.ChatMessage{}
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.messages[i])
	}
	return out, nil
}

func (s *MemoryStore) CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *msg)
	return nil
}

package service

import (
	"context"
	"errors"
	"sync"

	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

// fakeLLM 按调用顺序返回预设结果，并记录请求
type fakeLLM struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   []CompletionRequest
}

type fakeReply struct {
	text string
	err  error
}

func newFakeLLM(replies ...fakeReply) *fakeLLM {
	return &fakeLLM{replies: replies}
}

func (f *fakeLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if len(f.replies) == 0 {
		return "", errors.New("no reply configured")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

func (f *fakeLLM) Calls() []CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CompletionRequest(nil), f.calls...)
}

// failingStore 指定方法返回错误，其余透传给内存实现
type failingStore struct {
	*store.MemoryStore
	failTasks    error
	failActivity error
	failChat     error
}

func (s *failingStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	if s.failTasks != nil {
		return nil, s.failTasks
	}
	return s.MemoryStore.ListTasks(ctx)
}

func (s *failingStore) CreateActivity(ctx context.Context, a *model.Activity) error {
	if s.failActivity != nil {
		return s.failActivity
	}
	return s.MemoryStore.CreateActivity(ctx, a)
}

func (s *failingStore) CreateChatMessage(ctx context.Context, m *model.ChatMessage) error {
	if s.failChat != nil {
		return s.failChat
	}
	return s.MemoryStore.CreateChatMessage(ctx, m)
}

func seedTasks(t interface{ Fatalf(string, ...any) }, s store.TaskStore, titles ...string) []model.Task {
	out := make([]model.Task, 0, len(titles))
	for _, title := range titles {
		task := &model.Task{Title: title}
		if err := s.CreateTask(context.Background(), task); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		out = append(out, *task)
	}
	return out
}

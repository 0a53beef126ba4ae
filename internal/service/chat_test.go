package service

import (
	"context"
	"errors"
	"testing"

	"taskpilot/internal/config"
	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

func newTestServiceContext(st store.Store, llm ChatCompleter) *ServiceContext {
	cfg := &config.Config{
		Assistant: config.AssistantConfig{ProgramName: "eRupi Pilot Program"},
	}
	return NewServiceContextWithLLM(cfg, st, llm)
}

func TestChat_CreateScenario(t *testing.T) {
	st := store.NewMemoryStore()
	llm := newFakeLLM(
		fakeReply{text: `{"action":"create","title":"Mall Partnership","priority":"high"}`},
		fakeReply{text: "Done! I created Mall Partnership."},
	)
	svc := newTestServiceContext(st, llm).ChatService
	ctx := context.Background()

	turn, err := svc.HandleMessage(ctx, "Create a new task for mall partnership")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !turn.OperationResult.Success || turn.OperationResult.Task == nil {
		t.Fatalf("result = %+v", turn.OperationResult)
	}
	task := turn.OperationResult.Task
	if task.Title != "Mall Partnership" || task.Status != model.TaskStatusNotStarted || task.Priority != model.TaskPriorityHigh {
		t.Errorf("task = %+v", task)
	}

	activities, _ := st.ListActivities(ctx, task.ID)
	if len(activities) != 1 || activities[0].Type != model.ActivityCreated {
		t.Errorf("activities = %+v", activities)
	}

	if turn.UserMessage.Role != model.ChatRoleUser || turn.UserMessage.Content != "Create a new task for mall partnership" {
		t.Errorf("user message = %+v", turn.UserMessage)
	}
	if turn.AIMessage.Role != model.ChatRoleAssistant || turn.AIMessage.Content != "Done! I created Mall Partnership." {
		t.Errorf("ai message = %+v", turn.AIMessage)
	}
	if turn.AIMessage.TaskID == nil || *turn.AIMessage.TaskID != task.ID {
		t.Errorf("ai message 应关联任务")
	}

	msgs, _ := st.ListChatMessages(ctx, 10)
	if len(msgs) != 2 {
		t.Errorf("应保存两条消息, got %d", len(msgs))
	}
}

func TestChat_ModelDownStillReplies(t *testing.T) {
	st := store.NewMemoryStore()
	seedTasks(t, st, "a", "b")
	llm := newFakeLLM(
		fakeReply{err: errors.New("connection refused")},
		fakeReply{err: errors.New("connection refused")},
	)
	svc := newTestServiceContext(st, llm).ChatService

	turn, err := svc.HandleMessage(context.Background(), "what's going on?")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !turn.OperationResult.Success || len(turn.OperationResult.Tasks) != 2 {
		t.Errorf("应退回 list_tasks: %+v", turn.OperationResult)
	}
	if turn.AIMessage.Content != fallbackResponse {
		t.Errorf("reply = %q", turn.AIMessage.Content)
	}
	if turn.AIMessage.TaskID != nil {
		t.Errorf("列表结果不应关联任务")
	}
}

func TestChat_UnknownActionIsInBand(t *testing.T) {
	st := store.NewMemoryStore()
	llm := newFakeLLM(
		fakeReply{text: `{"action":"archive","taskId":"x"}`},
		fakeReply{text: "I can't archive tasks."},
	)
	svc := newTestServiceContext(st, llm).ChatService

	turn, err := svc.HandleMessage(context.Background(), "archive x")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if turn.OperationResult.Success || turn.OperationResult.Error != "Unknown action" {
		t.Errorf("result = %+v", turn.OperationResult)
	}
}

func TestChat_StoreErrorFoldedIntoResult(t *testing.T) {
	st := &failingStore{MemoryStore: store.NewMemoryStore(), failTasks: errors.New("db down")}
	llm := newFakeLLM(
		fakeReply{text: `{"action":"list_tasks"}`},
		fakeReply{text: "Sorry, the task list is unavailable."},
	)
	svc := newTestServiceContext(st, llm).ChatService

	turn, err := svc.HandleMessage(context.Background(), "list tasks")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if turn.OperationResult.Success || turn.OperationResult.Error != "db down" {
		t.Errorf("result = %+v", turn.OperationResult)
	}
	if turn.AIMessage == nil {
		t.Error("应仍然生成助手消息")
	}
}

func TestChat_PersistenceFailureSurfaces(t *testing.T) {
	st := &failingStore{MemoryStore: store.NewMemoryStore(), failChat: errors.New("disk full")}
	svc := newTestServiceContext(st, newFakeLLM()).ChatService

	if _, err := svc.HandleMessage(context.Background(), "hello"); err == nil {
		t.Fatal("消息落库失败应返回错误")
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	svc := newTestServiceContext(store.NewMemoryStore(), newFakeLLM()).ChatService
	if _, err := svc.HandleMessage(context.Background(), ""); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v", err)
	}
}

package service

import (
	"context"
	"log"

	"taskpilot/internal/config"
	"taskpilot/internal/store"
)

type ServiceContext struct {
	TaskService *TaskService
	Executor    *Executor
	ChatService *ChatService
}

// NewServiceContext 模型客户端初始化失败不阻止启动，聊天走兜底回复
func NewServiceContext(ctx context.Context, cfg *config.Config, st store.Store) *ServiceContext {
	llm, err := NewChatCompleter(ctx, cfg)
	if err != nil {
		log.Printf("[llm] 初始化模型失败 provider=%s err=%v", cfg.LLM.Provider, err)
		llm = unavailableCompleter{err: err}
	}
	return NewServiceContextWithLLM(cfg, st, llm)
}

func NewServiceContextWithLLM(cfg *config.Config, st store.Store, llm ChatCompleter) *ServiceContext {
	executor := NewExecutor(st, st)
	parser := NewIntentParser(llm, st, cfg.Assistant.ProgramName)
	responder := NewResponseGenerator(llm, cfg.Assistant.ProgramName, cfg.Assistant.Context)

	return &ServiceContext{
		TaskService: NewTaskService(st, st),
		Executor:    executor,
		ChatService: NewChatService(st, parser, executor, responder),
	}
}

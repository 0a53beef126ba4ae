package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

var ErrEmptyMessage = errors.New("message content is required")

// ChatTurn 一轮对话的返回
type ChatTurn struct {
	UserMessage     *model.ChatMessage `json:"userMessage"`
	AIMessage       *model.ChatMessage `json:"aiMessage"`
	OperationResult *OperationResult   `json:"operationResult"`
}

// ChatService 编排：保存用户消息 -> 意图解析 -> 执行 -> 生成回复 -> 保存助手消息
// 各步骤串行，不重试；只有消息落库失败会返回错误
type ChatService struct {
	chats     store.ChatStore
	parser    IntentParser
	executor  OperationExecutor
	responder ResponseGenerator
}

func NewChatService(chats store.ChatStore, parser IntentParser, executor OperationExecutor, responder ResponseGenerator) *ChatService {
	return &ChatService{
		chats:     chats,
		parser:    parser,
		executor:  executor,
		responder: responder,
	}
}

func (s *ChatService) ListMessages(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	return s.chats.ListChatMessages(ctx, limit)
}

func (s *ChatService) HandleMessage(ctx context.Context, content string) (*ChatTurn, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}

	userMessage := &model.ChatMessage{
		Content: content,
		Role:    model.ChatRoleUser,
	}
	if err := s.chats.CreateChatMessage(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("保存用户消息失败: %w", err)
	}

	op := s.parser.ParseIntent(ctx, content)

	result, err := s.executor.Execute(ctx, op, content)
	if err != nil {
		log.Printf("[chat] 执行操作失败 action=%s err=%v", op.Action, err)
		result = &OperationResult{Success: false, Error: err.Error()}
	} else if result == nil {
		result = &OperationResult{Success: false}
	}

	reply := s.responder.GenerateResponse(ctx, op, result)

	aiMessage := &model.ChatMessage{
		Content: reply,
		Role:    model.ChatRoleAssistant,
	}
	if result.Task != nil {
		aiMessage.TaskID = model.StringPtr(result.Task.ID)
	}
	if err := s.chats.CreateChatMessage(ctx, aiMessage); err != nil {
		return nil, fmt.Errorf("保存助手消息失败: %w", err)
	}

	return &ChatTurn{
		UserMessage:     userMessage,
		AIMessage:       aiMessage,
		OperationResult: result,
	}, nil
}

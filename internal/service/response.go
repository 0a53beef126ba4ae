package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

const (
	fallbackResponse = "Task operation completed. There was an issue generating a detailed response."
	emptyResponse    = "Task operation completed successfully."
)

// ResponseGenerator 把操作和结果转成自然语言回复，不向外返回错误
type ResponseGenerator interface {
	GenerateResponse(ctx context.Context, op Operation, result *OperationResult) string
}

// LLMResponseGenerator 第二次调用托管模型生成回复
type LLMResponseGenerator struct {
	llm            ChatCompleter
	programName    string
	programContext []string
}

func NewResponseGenerator(llm ChatCompleter, programName string, programContext []string) *LLMResponseGenerator {
	return &LLMResponseGenerator{llm: llm, programName: programName, programContext: programContext}
}

func (g *LLMResponseGenerator) GenerateResponse(ctx context.Context, op Operation, result *OperationResult) string {
	user, err := buildResponseQuery(op, result)
	if err != nil {
		log.Printf("[response] 序列化结果失败: %v", err)
		return fallbackResponse
	}

	answer, err := g.llm.Complete(ctx, CompletionRequest{
		System: g.buildSystemPrompt(),
		User:   user,
	})
	if err != nil {
		log.Printf("[response] 生成回复失败: %v", err)
		return fallbackResponse
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return emptyResponse
	}
	return answer
}

func (g *LLMResponseGenerator) buildSystemPrompt() string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("You are an AI assistant for the %s task management system. Generate helpful, conversational responses about task operations.\n\n", g.programName))
	prompt.WriteString("Be friendly, concise, and informative. Reference specific task details when available. If there was an error, explain it clearly and suggest next steps.\n")

	if len(g.programContext) > 0 {
		prompt.WriteString(fmt.Sprintf("\nContext about the %s:\n", g.programName))
		for _, line := range g.programContext {
			prompt.WriteString("- " + line + "\n")
		}
	}
	return prompt.String()
}

func buildResponseQuery(op Operation, result *OperationResult) (string, error) {
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}

	var q strings.Builder
	q.WriteString("Task operation completed:\n")
	q.WriteString(fmt.Sprintf("Operation: %s\n", op.Action))
	if op.TaskID != "" {
		q.WriteString(fmt.Sprintf("Task ID: %s\n", op.TaskID))
	}
	if op.Title != "" {
		q.WriteString(fmt.Sprintf("Title: %s\n", op.Title))
	}
	q.WriteString(fmt.Sprintf("Result: %s\n\n", resultJSON))
	q.WriteString("Generate a helpful response about what happened.")
	return q.String(), nil
}

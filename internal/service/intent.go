package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"taskpilot/internal/store"
)

// IntentParser 把自然语言转成结构化操作，不向外返回错误
type IntentParser interface {
	ParseIntent(ctx context.Context, message string) Operation
}

// maxPromptTasks 提示词中最多列出的任务数
const maxPromptTasks = 100

// LLMIntentParser 调用托管模型做意图分类
type LLMIntentParser struct {
	llm         ChatCompleter
	tasks       store.TaskStore
	programName string
}

// NewIntentParser tasks 可以为 nil，此时提示词中不附带任务列表
func NewIntentParser(llm ChatCompleter, tasks store.TaskStore, programName string) *LLMIntentParser {
	return &LLMIntentParser{llm: llm, tasks: tasks, programName: programName}
}

// ParseIntent 模型调用失败或输出无法解析时退回 list_tasks
func (p *LLMIntentParser) ParseIntent(ctx context.Context, message string) Operation {
	answer, err := p.llm.Complete(ctx, CompletionRequest{
		System: p.buildPrompt(ctx),
		User:   message,
		JSON:   true,
	})
	if err != nil {
		log.Printf("[intent] 调用模型失败，使用默认操作: %v", err)
		return Operation{Action: ActionListTasks}
	}

	op, err := ParseOperation(answer)
	if err != nil {
		log.Printf("[intent] 解析模型输出失败，使用默认操作: %v output=%s", err, truncate(answer, 300))
		return Operation{Action: ActionListTasks}
	}
	return op
}

func (p *LLMIntentParser) buildPrompt(ctx context.Context) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are an AI assistant for the %s task management system. Parse user requests into task operations.\n\n", p.programName))
	prompt.WriteString(`Available actions:
- create: Create a new task
- update: Update existing task details (title, description, status, priority, assignedTo, dueDate)
- complete: Mark a task as completed
- delete: Remove a task
- add_remark: Add activity/comment to a task
- get_status: Get status of specific task or overall progress
- list_tasks: List all tasks or filtered tasks

Extract relevant information and respond with JSON in this format:
{
  "action": "create|update|complete|delete|add_remark|get_status|list_tasks",
  "taskId": "optional - only for update/complete/delete/add_remark/get_status",
  "title": "optional - for create/update",
  "description": "optional - for create/update",
  "status": "optional - for update (not_started|in_progress|completed|failed)",
  "priority": "optional - for create/update (low|medium|high|critical)",
  "assignedTo": "optional - for create/update",
  "dueDate": "optional - for create/update (ISO date string)",
  "remarks": "optional - for add_remark"
}

If user mentions specific task by number/title, try to match it. Be intelligent about inferring the intent.
`)

	// 附带当前任务，方便模型把“第3个任务”“商场合作那个任务”对应到 id
	if p.tasks != nil {
		tasks, err := p.tasks.ListTasks(ctx)
		if err != nil {
			log.Printf("[intent] 读取任务列表失败: %v", err)
		} else if len(tasks) > 0 {
			prompt.WriteString("\nCurrent tasks (number. id | title | status):\n")
			for i, t := range tasks {
				if i >= maxPromptTasks {
					prompt.WriteString(fmt.Sprintf("...(%d more)\n", len(tasks)-maxPromptTasks))
					break
				}
				prompt.WriteString(fmt.Sprintf("%d. %s | %s | %s\n", i+1, t.ID, t.Title, t.Status))
			}
			prompt.WriteString("Use the id from this list as taskId whenever possible.\n")
		}
	}

	return prompt.String()
}

package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"taskpilot/internal/model"
)

type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionComplete  Action = "complete"
	ActionDelete    Action = "delete"
	ActionAddRemark Action = "add_remark"
	ActionGetStatus Action = "get_status"
	ActionListTasks Action = "list_tasks"
)

// Actions 模型可以输出的全部动作
func Actions() []Action {
	return []Action{
		ActionCreate,
		ActionUpdate,
		ActionComplete,
		ActionDelete,
		ActionAddRemark,
		ActionGetStatus,
		ActionListTasks,
	}
}

// Operation 意图解析的结果；字段值未经校验
type Operation struct {
	Action      Action `json:"action"`
	TaskID      string `json:"taskId,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// OperationResult 执行结果，原样返回给前端并交给回复生成
type OperationResult struct {
	Success    bool             `json:"success"`
	Task       *model.Task      `json:"task,omitempty"`
	Activity   *model.Activity  `json:"activity,omitempty"`
	Activities []model.Activity `json:"activities,omitempty"`
	Tasks      []model.Task     `json:"tasks,omitempty"`
	Stats      *TaskStats       `json:"stats,omitempty"`
	Error      string           `json:"error,omitempty"`
}

const (
	errUnknownAction = "Unknown action"
	errTaskNotFound  = "Task not found"
)

var errNoJSONObject = errors.New("no JSON object in model output")

// flexString 兼容模型把 taskId 等字段输出成数字的情况
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	// bool/object/array 一律视为未提供
	*f = ""
	return nil
}

type rawOperation struct {
	Action      flexString `json:"action"`
	TaskID      flexString `json:"taskId"`
	Title       flexString `json:"title"`
	Description flexString `json:"description"`
	Status      flexString `json:"status"`
	Priority    flexString `json:"priority"`
	AssignedTo  flexString `json:"assignedTo"`
	DueDate     flexString `json:"dueDate"`
	Remarks     flexString `json:"remarks"`
}

// ParseOperation 从模型输出中解析出操作（允许 markdown 代码块包裹）
func ParseOperation(content string) (Operation, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Operation{}, errNoJSONObject
	}

	var raw rawOperation
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return Operation{}, err
	}

	clean := func(f flexString) string { return strings.TrimSpace(string(f)) }
	return Operation{
		Action:      Action(strings.ToLower(clean(raw.Action))),
		TaskID:      clean(raw.TaskID),
		Title:       clean(raw.Title),
		Description: clean(raw.Description),
		Status:      strings.ToLower(clean(raw.Status)),
		Priority:    strings.ToLower(clean(raw.Priority)),
		AssignedTo:  clean(raw.AssignedTo),
		DueDate:     clean(raw.DueDate),
		Remarks:     clean(raw.Remarks),
	}, nil
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDueDate 支持 ISO 日期/时间的常见写法
func ParseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DifyClient 通过 Dify 应用调用模型（chat/workflow 两种应用类型）
type DifyClient struct {
	BaseURL           string
	APIKey            string
	Client            *http.Client
	AppType           string
	WorkflowSystemKey string
	WorkflowQueryKey  string
	WorkflowOutputKey string
}

var _ ChatCompleter = (*DifyClient)(nil)

func NewDifyClient(baseURL, apiKey string, appType string, workflowSystemKey string, workflowQueryKey string, workflowOutputKey string, timeout time.Duration) *DifyClient {
	if appType == "" {
		appType = "chat"
	}
	if workflowSystemKey == "" {
		workflowSystemKey = "system"
	}
	if workflowQueryKey == "" {
		workflowQueryKey = "query"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DifyClient{
		BaseURL:           strings.TrimRight(baseURL, "/"),
		APIKey:            apiKey,
		AppType:           appType,
		WorkflowSystemKey: workflowSystemKey,
		WorkflowQueryKey:  workflowQueryKey,
		WorkflowOutputKey: workflowOutputKey,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

type ChatRequest struct {
	Inputs         map[string]interface{} `json:"inputs"`
	Query          string                 `json:"query"`
	ResponseMode   string                 `json:"response_mode"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	User           string                 `json:"user"`
}

type ChatResponse struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
}

type WorkflowRunRequest struct {
	Inputs       map[string]interface{} `json:"inputs"`
	ResponseMode string                 `json:"response_mode"`
	User         string                 `json:"user"`
}

type WorkflowRunResponse struct {
	TaskID string `json:"task_id"`
	Data   struct {
		ID      string                 `json:"id"`
		Outputs map[string]interface{} `json:"outputs"`
		Status  string                 `json:"status"`
		Error   string                 `json:"error"`
	} `json:"data"`
}

// Complete 系统提示放进 inputs，用户输入作为 query
func (c *DifyClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	system := req.System
	if req.JSON {
		system += "\n\nRespond with a single JSON object only."
	}

	if c.AppType == "workflow" {
		return c.WorkflowRun(ctx, map[string]interface{}{
			c.WorkflowSystemKey: system,
			c.WorkflowQueryKey:  req.User,
		})
	}

	resp, err := c.Chat(ctx, req.User, map[string]interface{}{
		"system": system,
	})
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// Chat 使用 chat-messages 端点（blocking 模式）
func (c *DifyClient) Chat(ctx context.Context, query string, inputs map[string]interface{}) (*ChatResponse, error) {
	body, err := c.post(ctx, "/chat-messages", ChatRequest{
		Inputs:       inputs,
		Query:        query,
		ResponseMode: "blocking",
		User:         "taskpilot",
	})
	if err != nil {
		return nil, err
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return &chatResp, nil
}

// WorkflowRun 使用 workflows/run 端点，从 outputs 中取答案
func (c *DifyClient) WorkflowRun(ctx context.Context, inputs map[string]interface{}) (string, error) {
	body, err := c.post(ctx, "/workflows/run", WorkflowRunRequest{
		Inputs:       inputs,
		ResponseMode: "blocking",
		User:         "taskpilot",
	})
	if err != nil {
		return "", err
	}

	var runResp WorkflowRunResponse
	if err := json.Unmarshal(body, &runResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if runResp.Data.Status == "failed" {
		return "", fmt.Errorf("workflow 执行失败: %s", runResp.Data.Error)
	}
	return extractWorkflowAnswer(runResp.Data.Outputs, c.WorkflowOutputKey), nil
}

func (c *DifyClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// 尝试解析错误信息
		var errResp map[string]interface{}
		if json.Unmarshal(body, &errResp) == nil {
			if msg, ok := errResp["message"].(string); ok {
				return nil, fmt.Errorf("API返回错误: %d, %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("API返回错误: %d, %s", resp.StatusCode, truncate(string(body), 500))
	}
	return body, nil
}

func extractWorkflowAnswer(outputs map[string]interface{}, outputKey string) string {
	if outputs == nil {
		return ""
	}

	if outputKey != "" {
		if v, ok := outputs[outputKey]; ok {
			return stringify(v)
		}
	}

	for _, k := range []string{"answer", "text", "output", "result"} {
		if v, ok := outputs[k]; ok {
			return stringify(v)
		}
	}

	for _, v := range outputs {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	return stringify(outputs)
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

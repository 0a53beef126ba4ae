package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskpilot/internal/config"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderDify      = "dify"

	DefaultOllamaURL = "http://localhost:11434"
)

// CompletionRequest 一次补全：系统提示 + 用户输入
type CompletionRequest struct {
	System string
	User   string
	// JSON 要求模型只输出一个 JSON 对象
	JSON bool
}

// ChatCompleter 托管模型的最小能力，测试中用假实现替换
type ChatCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// EinoCompleter 基于 eino ChatModel 的实现
type EinoCompleter struct {
	chat     einomodel.BaseChatModel
	jsonChat einomodel.BaseChatModel
	timeout  time.Duration
}

func NewEinoCompleter(chat, jsonChat einomodel.BaseChatModel, timeout time.Duration) *EinoCompleter {
	return &EinoCompleter{chat: chat, jsonChat: jsonChat, timeout: timeout}
}

func (c *EinoCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m := c.chat
	if req.JSON && c.jsonChat != nil {
		m = c.jsonChat
	}
	if m == nil {
		return "", errors.New("chat model not configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := make([]*schema.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, schema.SystemMessage(req.System))
	}
	messages = append(messages, schema.UserMessage(req.User))

	resp, err := m.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	if resp == nil {
		return "", errors.New("llm generate: empty response")
	}
	return resp.Content, nil
}

// NewChatModel 按 provider 创建 eino ChatModel；jsonMode 仅对 openai 生效
func NewChatModel(ctx context.Context, cfg config.LLMConfig, jsonMode bool) (einomodel.BaseChatModel, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		mc := &openai.ChatModelConfig{
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		}
		if jsonMode {
			mc.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}
		return openai.NewChatModel(ctx, mc)

	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		model := cfg.Model
		if model == "" {
			model = config.DefaultOllamaModel
		}
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   model,
		})

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		return claude.NewChatModel(ctx, claudeConfig(cfg))

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, ollama, anthropic, dify)", cfg.Provider)
	}
}

// claudeConfig MaxTokens 为 0 时接口会拒绝请求
func claudeConfig(cfg config.LLMConfig) *claude.Config {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultClaudeModel
	}
	return &claude.Config{
		APIKey:    cfg.APIKey,
		Model:     model,
		MaxTokens: maxTokens,
	}
}

// NewChatCompleter 根据配置创建补全客户端
func NewChatCompleter(ctx context.Context, cfg *config.Config) (ChatCompleter, error) {
	if cfg.LLM.Provider == ProviderDify {
		return NewDifyClient(
			cfg.Dify.BaseURL,
			cfg.Dify.APIKey,
			cfg.Dify.AppType,
			cfg.Dify.WorkflowSystemKey,
			cfg.Dify.WorkflowQueryKey,
			cfg.Dify.WorkflowOutputKey,
			cfg.LLM.Timeout,
		), nil
	}

	chat, err := NewChatModel(ctx, cfg.LLM, false)
	if err != nil {
		return nil, err
	}
	jsonChat, err := NewChatModel(ctx, cfg.LLM, true)
	if err != nil {
		return nil, err
	}
	return NewEinoCompleter(chat, jsonChat, cfg.LLM.Timeout), nil
}

// unavailableCompleter 模型未配置时使用，所有调用都失败，由上层走兜底逻辑
type unavailableCompleter struct {
	err error
}

func (u unavailableCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return "", fmt.Errorf("llm unavailable: %w", u.err)
}

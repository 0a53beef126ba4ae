package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"taskpilot/internal/config"
)

// stubChatModel 记录收到的消息并返回固定内容
type stubChatModel struct {
	reply    string
	err      error
	received []*schema.Message
	deadline bool
}

func (m *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.received = input
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestEinoCompleter_PicksModelByMode(t *testing.T) {
	plain := &stubChatModel{reply: "hello"}
	jsonModel := &stubChatModel{reply: `{"action":"list_tasks"}`}
	c := NewEinoCompleter(plain, jsonModel, time.Second)

	got, err := c.Complete(context.Background(), CompletionRequest{System: "sys", User: "hi", JSON: true})
	if err != nil || got != `{"action":"list_tasks"}` {
		t.Fatalf("got %q err %v", got, err)
	}
	if len(jsonModel.received) != 2 || jsonModel.received[0].Role != schema.System || jsonModel.received[1].Content != "hi" {
		t.Errorf("messages = %+v", jsonModel.received)
	}
	if !jsonModel.deadline {
		t.Error("应设置超时")
	}

	got, err = c.Complete(context.Background(), CompletionRequest{User: "hi"})
	if err != nil || got != "hello" {
		t.Fatalf("got %q err %v", got, err)
	}
	if len(plain.received) != 1 {
		t.Errorf("没有系统提示时只发送用户消息: %+v", plain.received)
	}
}

func TestEinoCompleter_WrapsError(t *testing.T) {
	c := NewEinoCompleter(&stubChatModel{err: errors.New("rate limited")}, nil, 0)
	_, err := c.Complete(context.Background(), CompletionRequest{User: "hi", JSON: true})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v", err)
	}
}

func TestNewChatCompleter(t *testing.T) {
	ctx := context.Background()

	dify, err := NewChatCompleter(ctx, &config.Config{
		LLM:  config.LLMConfig{Provider: ProviderDify, Timeout: time.Second},
		Dify: config.DifyConfig{BaseURL: "http://dify.local/v1"},
	})
	if err != nil {
		t.Fatalf("dify: %v", err)
	}
	if _, ok := dify.(*DifyClient); !ok {
		t.Errorf("dify provider 应返回 *DifyClient, got %T", dify)
	}

	if _, err := NewChatCompleter(ctx, &config.Config{LLM: config.LLMConfig{Provider: ProviderOpenAI}}); err == nil {
		t.Error("openai 缺少 key 应报错")
	}
	claudeCompleter, err := NewChatCompleter(ctx, &config.Config{LLM: config.LLMConfig{Provider: ProviderAnthropic, APIKey: "k"}})
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if _, ok := claudeCompleter.(*EinoCompleter); !ok {
		t.Errorf("anthropic provider 应返回 *EinoCompleter, got %T", claudeCompleter)
	}

	if _, err := NewChatCompleter(ctx, &config.Config{LLM: config.LLMConfig{Provider: "gemini"}}); err == nil {
		t.Error("未知 provider 应报错")
	}
}

func TestUnavailableCompleter(t *testing.T) {
	u := unavailableCompleter{err: errors.New("no key")}
	if _, err := u.Complete(context.Background(), CompletionRequest{}); err == nil || !strings.Contains(err.Error(), "no key") {
		t.Errorf("err = %v", err)
	}
}

func TestClaudeConfig_Defaults(t *testing.T) {
	cc := claudeConfig(config.LLMConfig{Provider: ProviderAnthropic, APIKey: "k"})
	if cc.MaxTokens != config.DefaultMaxTokens {
		t.Errorf("max tokens = %d", cc.MaxTokens)
	}
	if cc.Model != config.DefaultClaudeModel {
		t.Errorf("model = %q", cc.Model)
	}

	cc = claudeConfig(config.LLMConfig{Provider: ProviderAnthropic, APIKey: "k", Model: "claude-opus-4-1", MaxTokens: 4096})
	if cc.MaxTokens != 4096 || cc.Model != "claude-opus-4-1" {
		t.Errorf("config = %+v", cc)
	}
}

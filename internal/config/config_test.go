package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, `
server:
  port: 8081
database:
  driver: sqlite
  path: /tmp/pilot.db
llm:
  provider: ollama
  model: llama3
  base_url: http://localhost:11434
  timeout: 15s
assistant:
  program_name: Demo Pilot
  context:
    - one partner
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/tmp/pilot.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Assistant.ProgramName != "Demo Pilot" || len(cfg.Assistant.Context) != 1 {
		t.Errorf("assistant = %+v", cfg.Assistant)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.Charset != "utf8mb4" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.LLM.Provider != DefaultProvider || cfg.LLM.Model != DefaultOpenAIModel {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != DefaultLLMTimeout {
		t.Errorf("timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxTokens != DefaultMaxTokens {
		t.Errorf("max tokens = %d", cfg.LLM.MaxTokens)
	}
	if cfg.Assistant.ProgramName != DefaultProgramName || len(cfg.Assistant.Context) != 4 {
		t.Errorf("assistant = %+v", cfg.Assistant)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TASKPILOT_DB_DRIVER", "memory")
	path := writeConfig(t, "server:\n  port: 8081\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("缺失的配置文件应当报错")
	}
}

func TestLoadConfig_ProviderModelDefaults(t *testing.T) {
	cases := map[string]string{
		"openai":    DefaultOpenAIModel,
		"anthropic": DefaultClaudeModel,
		"ollama":    DefaultOllamaModel,
	}
	for provider, want := range cases {
		t.Run(provider, func(t *testing.T) {
			t.Setenv("TASKPILOT_LLM_MODEL", "")
			t.Setenv("TASKPILOT_LLM_PROVIDER", "")
			path := writeConfig(t, "llm:\n  provider: "+provider+"\n")
			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if cfg.LLM.Model != want {
				t.Errorf("model = %q, want %q", cfg.LLM.Model, want)
			}
			if cfg.LLM.MaxTokens != DefaultMaxTokens {
				t.Errorf("max tokens = %d", cfg.LLM.MaxTokens)
			}
		})
	}
}

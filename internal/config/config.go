package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Dify      DifyConfig      `yaml:"dify"`
	Assistant AssistantConfig `yaml:"assistant"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// gin 运行模式：debug/release/test
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	// mysql/postgres/sqlite/memory
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Charset  string `yaml:"charset"`
	SSLMode  string `yaml:"sslmode"`
	// sqlite 文件路径
	Path string `yaml:"path"`
}

type LLMConfig struct {
	// openai/ollama/anthropic/dify
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	// 单次模型调用超时
	Timeout time.Duration `yaml:"timeout"`
	// 回复最大 token 数，anthropic 必填
	MaxTokens int `yaml:"max_tokens"`
}

type DifyConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// 应用类型：chat/workflow
	AppType string `yaml:"app_type"`
	// workflow 的 inputs 字段名（默认 system/query）
	WorkflowSystemKey string `yaml:"workflow_system_key"`
	WorkflowQueryKey  string `yaml:"workflow_query_key"`
	// 从 outputs 中取该 key 作为 answer；为空则自动猜测
	WorkflowOutputKey string `yaml:"workflow_output_key"`
}

// AssistantConfig 回复生成时注入的项目背景
type AssistantConfig struct {
	ProgramName string   `yaml:"program_name"`
	Context     []string `yaml:"context"`
}

const (
	DefaultPort        = 5000
	DefaultProvider    = "openai"
	DefaultOpenAIModel = "gpt-5"
	DefaultClaudeModel = "claude-sonnet-4-5"
	DefaultOllamaModel = "llama3.2"
	DefaultMaxTokens   = 1024
	DefaultLLMTimeout  = 60 * time.Second
	DefaultProgramName = "eRupi Pilot Program"
)

var defaultProgramContext = []string{
	"This is a voucher pilot program with GPay",
	"There are 17 key tasks covering mall partnerships, program setup, customer onboarding, and monitoring",
	"Tasks involve ecosystem partners like ICICI bank, GPay, and malls",
	"The goal is to test eRupi vouchers in real market conditions",
}

// LoadConfig 读取 yaml 配置；path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

// applyEnv 环境变量优先于配置文件（主要用于密钥）
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("TASKPILOT_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("TASKPILOT_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("TASKPILOT_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("TASKPILOT_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "anthropic":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "", "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if v := os.Getenv("DIFY_API_KEY"); v != "" && c.Dify.APIKey == "" {
		c.Dify.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Path == "" {
		c.Database.Path = "taskpilot.db"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.Model = DefaultOpenAIModel
		case "anthropic":
			c.LLM.Model = DefaultClaudeModel
		case "ollama":
			c.LLM.Model = DefaultOllamaModel
		}
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = DefaultLLMTimeout
	}
	if c.Assistant.ProgramName == "" {
		c.Assistant.ProgramName = DefaultProgramName
	}
	if len(c.Assistant.Context) == 0 {
		c.Assistant.Context = append([]string(nil), defaultProgramContext...)
	}
}

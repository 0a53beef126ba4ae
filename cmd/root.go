package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskpilot/internal/config"
	"taskpilot/internal/db"
	"taskpilot/internal/store"
)

// cfgFile 配置文件路径，为空时只使用环境变量和默认值
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "Task tracker for the eRupi pilot program with an AI chat assistant",
	Long: `taskpilot serves the pilot program task API and the natural-language chat
assistant that turns requests like "mark task 3 as done" into task operations.`,
	SilenceUsage: true,
}

// Execute 由 main.main 调用
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.yaml", "config file")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, nil
}

// openStore memory 驱动使用进程内存储，其余走 gorm
func openStore(cfg config.DatabaseConfig) (store.Store, error) {
	if cfg.Driver == "memory" {
		return store.NewMemoryStore(), nil
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	return store.NewGormStore(gdb), nil
}

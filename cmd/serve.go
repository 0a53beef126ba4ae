package cmd

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"taskpilot/internal/router"
	"taskpilot/internal/seed"
	"taskpilot/internal/service"
)

var (
	servePort int
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if cfg.Server.Mode != "" {
			gin.SetMode(cfg.Server.Mode)
		}

		st, err := openStore(cfg.Database)
		if err != nil {
			return err
		}

		// 初始化服务
		svcCtx := service.NewServiceContext(cmd.Context(), cfg, st)

		if serveSeed {
			if _, err := seed.RunIfEmpty(cmd.Context(), svcCtx.TaskService); err != nil {
				return fmt.Errorf("写入种子数据失败: %w", err)
			}
		}

		r := router.SetupRouter(svcCtx)

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Printf("服务启动在 %s (llm=%s, db=%s)", addr, cfg.LLM.Provider, cfg.Database.Driver)
		if err := r.Run(addr); err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "insert the pilot tasks when the store is empty")
	rootCmd.AddCommand(serveCmd)
}

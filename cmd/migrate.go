package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"taskpilot/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == "memory" {
			return fmt.Errorf("memory 驱动无需迁移")
		}

		// Open 内部会执行 AutoMigrate
		if _, err := db.Open(cfg.Database); err != nil {
			return err
		}
		log.Printf("迁移完成 driver=%s", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

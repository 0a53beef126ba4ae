package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskpilot/internal/seed"
	"taskpilot/internal/service"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the eRupi pilot plan tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == "memory" {
			return fmt.Errorf("memory 驱动的数据不会保留，请使用 serve --seed")
		}

		st, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		svc := service.NewTaskService(st, st)

		var n int
		if seedForce {
			n, err = seed.Run(cmd.Context(), svc)
		} else {
			n, err = seed.RunIfEmpty(cmd.Context(), svc)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tasks\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "insert even when tasks already exist")
	rootCmd.AddCommand(seedCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report engine readiness and vocabulary tier counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := engine.New(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.Health(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("ready=%v words=%d labels=%d chars=%d\n", res.Ready, res.Words, res.Labels, res.Chars)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

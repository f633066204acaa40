package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored document's address, name, and bond-table sizes",
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

		docs, err := e.List(context.Background())
		if err != nil {
			return err
		}
		for _, d := range docs {
			fmt.Printf("doc_id=%d name=%q starters=%d bonds=%d\n", d.DocID, d.Name, d.Starters, d.Bonds)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var bondsToken string

var bondsCmd = &cobra.Command{
	Use:   "bonds <doc_id>",
	Short: "List a document's bond table, optionally filtered by A-side token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parse doc_id: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := engine.New(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		bonds, err := e.Bonds(context.Background(), docID, bondsToken)
		if err != nil {
			return err
		}
		for _, b := range bonds {
			fmt.Printf("token=%s surface=%q count=%d\n", b.Token, b.Surface, b.Count)
		}
		return nil
	},
}

func init() {
	bondsCmd.Flags().StringVar(&bondsToken, "token", "", "restrict to bonds whose A-side is this Token ID")
	rootCmd.AddCommand(bondsCmd)
}

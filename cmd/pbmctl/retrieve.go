package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <doc_id>",
	Short: "Reassemble a stored document's Pair-Bond Map back to text",
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

		res, err := e.Retrieve(context.Background(), docID)
		if err != nil {
			return err
		}
		fmt.Println(res.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
}

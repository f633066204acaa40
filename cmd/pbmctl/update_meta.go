package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var (
	updateMetaSetJSON string
	updateMetaRemove  []string
)

var updateMetaCmd = &cobra.Command{
	Use:   "update-meta <doc_id>",
	Short: "Merge or remove fields on a document's mutable metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parse doc_id: %w", err)
		}

		var set map[string]any
		if updateMetaSetJSON != "" {
			if err := json.Unmarshal([]byte(updateMetaSetJSON), &set); err != nil {
				return fmt.Errorf("parse --set: %w", err)
			}
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

		res, err := e.UpdateMeta(context.Background(), docID, set, updateMetaRemove)
		if err != nil {
			return err
		}
		fmt.Printf("fields_set=%d fields_removed=%d\n", res.FieldsSet, res.FieldsRemoved)
		return nil
	},
}

func init() {
	updateMetaCmd.Flags().StringVar(&updateMetaSetJSON, "set", "", "fields to merge in, as a JSON object")
	updateMetaCmd.Flags().StringSliceVar(&updateMetaRemove, "remove", nil, "field names to remove")
	rootCmd.AddCommand(updateMetaCmd)
}

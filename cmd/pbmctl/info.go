package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var infoCmd = &cobra.Command{
	Use:   "info <doc_id>",
	Short: "Show full detail for a stored document",
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

		doc, pbm, err := e.Info(context.Background(), docID)
		if err != nil {
			return err
		}
		fmt.Printf("doc_id=%d doc_token_id=%s name=%q century=%s category=%q subcategory=%q\n",
			doc.DocID, doc.TokenID, doc.Meta.Name, doc.Meta.CenturyCode, doc.Meta.Category, doc.Meta.Subcategory)
		fmt.Printf("first_fpb=%v unique_tokens=%d bonds=%d total_pairs=%d\n",
			doc.FirstFPB, len(pbm.UniqueTokens), len(pbm.Bonds), pbm.TotalPairs)
		for k, v := range doc.Meta.Metadata {
			fmt.Printf("metadata.%s=%v\n", k, v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

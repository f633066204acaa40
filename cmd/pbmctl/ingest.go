package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var (
	ingestFile        string
	ingestName        string
	ingestCentury     string
	ingestCategory    string
	ingestSubcategory string
	ingestMetaJSON    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Tokenize, disassemble, and persist text as a new document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInputText(args, ingestFile)
		if err != nil {
			return err
		}

		var metadata map[string]any
		if ingestMetaJSON != "" {
			if err := json.Unmarshal([]byte(ingestMetaJSON), &metadata); err != nil {
				return fmt.Errorf("parse --metadata: %w", err)
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

		res, err := e.Ingest(context.Background(), engine.IngestRequest{
			Text:        text,
			Name:        ingestName,
			Century:     ingestCentury,
			Category:    ingestCategory,
			Subcategory: ingestSubcategory,
			Metadata:    metadata,
		})
		if err != nil {
			return err
		}
		fmt.Printf("doc_id=%d doc_token_id=%s tokens=%d unique=%d slots=%d meta_known=%d meta_unreviewed=%d elapsed=%s\n",
			res.DocID, res.DocTokenID, res.Tokens, res.Unique, res.Slots, res.MetaKnown, res.MetaUnreviewed, res.Elapsed)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "read text from a file instead of the positional argument")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "document name")
	ingestCmd.Flags().StringVar(&ingestCentury, "century", "", "century code (defaults to the store's default_century)")
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "", "document category")
	ingestCmd.Flags().StringVar(&ingestSubcategory, "subcategory", "", "document subcategory")
	ingestCmd.Flags().StringVar(&ingestMetaJSON, "metadata", "", "document metadata as a JSON object")
	rootCmd.AddCommand(ingestCmd)
}

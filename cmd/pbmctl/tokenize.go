package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/engine"
)

var tokenizeFile string

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [text]",
	Short: "Tokenize text and report pair statistics without persisting it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInputText(args, tokenizeFile)
		if err != nil {
			return err
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

		res, err := e.Tokenize(context.Background(), text)
		if err != nil {
			return err
		}
		fmt.Printf("tokens=%d unique=%d bonds=%d total_pairs=%d original_bytes=%d elapsed=%s\n",
			res.Tokens, res.Unique, res.Bonds, res.TotalPairs, res.OriginalBytes, res.Elapsed)
		return nil
	},
}

func init() {
	tokenizeCmd.Flags().StringVar(&tokenizeFile, "file", "", "read text from a file instead of the positional argument")
	rootCmd.AddCommand(tokenizeCmd)
}

// readInputText resolves the text to operate on from a --file flag, a
// positional argument, or stdin, in that order of preference.
func readInputText(args []string, file string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(b), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

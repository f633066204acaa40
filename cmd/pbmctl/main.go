// Command pbmctl is a thin Cobra shell over the engine facade (spec
// §6.1): each subcommand opens an Engine from the resolved config,
// calls exactly one facade method, and prints the result. It carries
// no business logic of its own — pretty-printing and a wire transport
// are explicitly out of scope (spec.md Non-goals).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/humancognome/textpbm/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "pbmctl",
	Short: "pbmctl manages a Token ID / Pair-Bond Map store",
	Long: `pbmctl is a command-line client for the text-to-structure codec
and storage engine: it tokenizes text into Token IDs, ingests documents
as Pair-Bond Maps, and retrieves them back to text.

Examples:
  pbmctl health
  pbmctl tokenize "The whale swims."
  pbmctl ingest --file moby.txt --name "Moby Dick"
  pbmctl retrieve 1`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a pbmctl config file")
}

func loadConfig() (config.Config, error) {
	return config.Load(configFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

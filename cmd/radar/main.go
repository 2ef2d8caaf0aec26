// Command radar runs the deterministic analysis pipelines against local
// files, without a server or any model provider. Useful for triaging a
// suspicious archive or transcript offline.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvillegas/scam-radar/internal/domain/analysis"
)

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Offline scam-risk analysis for chat transcripts and repository archives",
}

var chatCmd = &cobra.Command{
	Use:   "chat <transcript-file>",
	Short: "Score a chat transcript with the heuristic pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		result := analysis.HeuristicAnalyzeChat(string(text))
		return printJSON(result)
	},
}

var repoCmd = &cobra.Command{
	Use:   "repo <archive.zip>",
	Short: "Scan a zipped repository for scam indicators",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		rep, err := analysis.ScanArchive(data)
		if err != nil {
			return err
		}
		return printJSON(analysis.BaseRepoResult(rep))
	},
	Args: cobra.ExactArgs(1),
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	rootCmd.AddCommand(chatCmd, repoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

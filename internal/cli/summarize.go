package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeJSON bool

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a document",
	Long: `Loads a .txt or .md document and prints an extractive summary of at
most the configured number of words.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runSummarize),
}

func init() {
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(summarizeCmd)
}

type summaryOutput struct {
	Session  string `json:"session"`
	Document string `json:"document"`
	Summary  string `json:"summary"`
}

func runSummarize(cmd *cobra.Command, args []string, a *app) error {
	sess, summary, err := a.upload(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	if summarizeJSON {
		return printJSON(cmd, summaryOutput{
			Session:  sess.ID(),
			Document: sess.Document().Name,
			Summary:  summary,
		})
	}
	cmd.Println(summary)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

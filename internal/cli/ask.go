package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [file] [question...]",
	Short: "Ask a question about a document",
	Long: `Answers a free-form question from the document's most relevant
paragraphs. The answer is followed by a justification naming how many
passages it was drawn from.`,
	Args: cobra.MinimumNArgs(2),
	RunE: withApp(runAsk),
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	sess, _, err := a.upload(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	turn, err := a.sessions.Ask(ctx, sess.ID(), strings.Join(args[1:], " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, turn)
	}
	cmd.Println(turn.Answer)
	cmd.Println()
	cmd.Printf("Justification: %s\n", turn.Justification)
	return nil
}

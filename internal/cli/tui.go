package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docinsight/internal/loader"
	"docinsight/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Open a document in the interactive terminal UI",
	Long: `Starts an interactive session with two modes. Ask mode answers
free-form questions; Challenge mode generates questions and scores your
answers. Tab switches modes, Ctrl+R regenerates questions and Ctrl+C quits.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runTUI),
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	sess, summary, err := a.upload(ctx, args[0])
	if err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	model := tui.New(ctx, a.sessions, sess.ID(), loader.DisplayName(sess.Document().Name), summary)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

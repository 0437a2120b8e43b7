package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionJSON bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and continue stored sessions",
	Long: `Works with sessions kept by the configured session store. Sessions only
outlive a single command when session.store is set to sqlite.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored session IDs",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSessionList),
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session's summary, conversation and challenge",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runSessionShow),
}

var sessionAskCmd = &cobra.Command{
	Use:   "ask [id] [question...]",
	Short: "Ask a follow-up question in an existing session",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApp(runSessionAsk),
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset [id]",
	Short: "Drop a session's challenge questions and answers",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runSessionReset),
}

func init() {
	sessionCmd.PersistentFlags().BoolVar(&sessionJSON, "json", false, "output as JSON")
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionAskCmd, sessionResetCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, _ []string, a *app) error {
	ids, err := a.sessions.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sessions failed: %w", err)
	}
	if sessionJSON {
		return printJSON(cmd, ids)
	}
	if len(ids) == 0 {
		cmd.Println("No sessions found.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string, a *app) error {
	snap, err := a.sessions.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("show session failed: %w", err)
	}
	if sessionJSON {
		return printJSON(cmd, snap)
	}

	cmd.Printf("Session %s (%s)\n\n", snap.ID, snap.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Println(snap.Summary)
	for _, t := range snap.History {
		cmd.Println()
		cmd.Printf("Q: %s\nA: %s\n", t.Question, t.Answer)
	}
	for i, sl := range snap.Challenge {
		cmd.Println()
		cmd.Printf("%d. %s\n", i+1, sl.Question)
		if sl.Evaluation != nil {
			cmd.Printf("   %s (%d/10)\n", sl.Answer, sl.Evaluation.Score)
		}
	}
	return nil
}

func runSessionAsk(cmd *cobra.Command, args []string, a *app) error {
	turn, err := a.sessions.Ask(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	if sessionJSON {
		return printJSON(cmd, turn)
	}
	cmd.Println(turn.Answer)
	cmd.Println()
	cmd.Printf("Justification: %s\n", turn.Justification)
	return nil
}

func runSessionReset(cmd *cobra.Command, args []string, a *app) error {
	if err := a.sessions.ResetChallenge(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("reset session failed: %w", err)
	}
	cmd.Printf("Challenge reset for session %s\n", args[0])
	return nil
}

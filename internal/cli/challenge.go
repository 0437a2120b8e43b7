package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	challengeJSON  bool
	evaluateIndex  int
	evaluateAnswer string
	evaluateJSON   bool
)

var challengeCmd = &cobra.Command{
	Use:   "challenge [file]",
	Short: "Generate comprehension questions for a document",
	Long: `Generates three questions built from the document's key concepts,
padded with generic comprehension questions when too few concepts exist.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runChallenge),
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Score an answer to a challenge question",
	Long: `Generates the challenge questions for a document and scores the given
answer to question --question (1-based) from 0 to 10 against the document.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runEvaluate),
}

func init() {
	challengeCmd.Flags().BoolVar(&challengeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(challengeCmd)

	evaluateCmd.Flags().IntVarP(&evaluateIndex, "question", "q", 1, "challenge question number (1-3)")
	evaluateCmd.Flags().StringVarP(&evaluateAnswer, "answer", "a", "", "your answer")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "output as JSON")
	_ = evaluateCmd.MarkFlagRequired("answer")
	rootCmd.AddCommand(evaluateCmd)
}

func runChallenge(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	sess, _, err := a.upload(ctx, args[0])
	if err != nil {
		return fmt.Errorf("challenge failed: %w", err)
	}
	questions, err := a.sessions.GenerateQuestions(ctx, sess.ID())
	if err != nil {
		return fmt.Errorf("challenge failed: %w", err)
	}

	if challengeJSON {
		return printJSON(cmd, questions)
	}
	for i, q := range questions {
		cmd.Printf("%d. %s\n", i+1, q)
	}
	return nil
}

type evaluationOutput struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	Justification string `json:"justification"`
}

func runEvaluate(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	sess, _, err := a.upload(ctx, args[0])
	if err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}
	questions, err := a.sessions.GenerateQuestions(ctx, sess.ID())
	if err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}
	ev, err := a.sessions.EvaluateAnswer(ctx, sess.ID(), evaluateIndex-1, evaluateAnswer)
	if err != nil {
		return fmt.Errorf("evaluate failed: question %d: %w", evaluateIndex, err)
	}
	question := questions[evaluateIndex-1]

	if evaluateJSON {
		return printJSON(cmd, evaluationOutput{
			Question:      question,
			Answer:        evaluateAnswer,
			Score:         ev.Score,
			Feedback:      ev.Feedback,
			Justification: ev.Justification,
		})
	}
	cmd.Printf("Q%d: %s\n", evaluateIndex, question)
	cmd.Printf("Score: %d/10\n", ev.Score)
	cmd.Println(ev.Feedback)
	cmd.Println(ev.Justification)
	return nil
}

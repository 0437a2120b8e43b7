package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docinsight/internal/domain"
)

const parisDoc = "The capital of France is Paris. It is known for the Eiffel Tower."

// setupWorkspace writes a config and a document into a temp dir.
func setupWorkspace(t *testing.T, configYAML string) (cfgPath, docPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "docinsight.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))
	docPath = filepath.Join(dir, "paris_notes.txt")
	require.NoError(t, os.WriteFile(docPath, []byte(parisDoc), 0o644))
	return cfgPath, docPath
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

const memoryConfig = `ranker:
  backend: tfidf
session:
  store: memory
log:
  mode: production
`

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"summarize", "ask", "challenge", "evaluate", "tui", "session"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestSummarizeCmd(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	out, err := runCLI(t, "summarize", "--config", cfg, doc)
	require.NoError(t, err)
	assert.Equal(t, parisDoc+"\n", out)
}

func TestSummarizeCmd_JSON(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	out, err := runCLI(t, "summarize", "--json", "--config", cfg, doc)
	require.NoError(t, err)

	var got summaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "paris_notes.txt", got.Document)
	assert.Equal(t, parisDoc, got.Summary)
	assert.NotEmpty(t, got.Session)
}

func TestSummarizeCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := runCLI(t, "summarize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSummarizeCmd_UnsupportedFile(t *testing.T) {
	cfg, _ := setupWorkspace(t, memoryConfig)
	pdf := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o644))

	_, err := runCLI(t, "summarize", "--config", cfg, pdf)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskCmd(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	out, err := runCLI(t, "ask", "--config", cfg, doc, "What", "is", "the", "capital", "of", "France?")
	require.NoError(t, err)
	assert.Contains(t, out, "According to the document, The capital of France is Paris.")
	assert.Contains(t, out, "Justification: ")
}

func TestAskCmd_JSON(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	out, err := runCLI(t, "ask", "--json", "--config", cfg, doc, "What is the capital of France?")
	require.NoError(t, err)

	var turn domain.ConversationTurn
	require.NoError(t, json.Unmarshal([]byte(out), &turn))
	assert.Equal(t, "What is the capital of France?", turn.Question)
	assert.Contains(t, turn.Answer, "Paris")
	assert.NotEmpty(t, turn.Justification)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, err := runCLI(t, "ask", "doc.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestChallengeCmd(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	out, err := runCLI(t, "challenge", "--config", cfg, doc)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, []string{"1. ", "2. ", "3. "}[i]), line)
	}
}

func TestEvaluateCmd_JSON(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	out, err := runCLI(t, "evaluate", "--json", "--config", cfg, "-q", "2",
		"--answer", "First, the capital of France is Paris, known for the Eiffel Tower.", doc)
	require.NoError(t, err)

	var got evaluationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Question)
	assert.GreaterOrEqual(t, got.Score, 0)
	assert.LessOrEqual(t, got.Score, 10)
	assert.NotEmpty(t, got.Feedback)
	assert.NotEmpty(t, got.Justification)
}

func TestEvaluateCmd_RequiresAnswer(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	_, err := runCLI(t, "evaluate", "--config", cfg, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "answer" not set`)
}

func TestEvaluateCmd_QuestionOutOfRange(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)

	_, err := runCLI(t, "evaluate", "--config", cfg, "--question", "4", "--answer", "Paris", doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionCmds_SQLite(t *testing.T) {
	dataDir := t.TempDir()
	cfg, doc := setupWorkspace(t, "session:\n  store: sqlite\n  data_dir: "+dataDir+"\nlog:\n  mode: production\n")

	out, err := runCLI(t, "summarize", "--json", "--config", cfg, doc)
	require.NoError(t, err)
	var created summaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &created))

	out, err = runCLI(t, "session", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, created.Session)

	out, err = runCLI(t, "session", "ask", "--config", cfg, created.Session, "What", "is", "the", "capital", "of", "France?")
	require.NoError(t, err)
	assert.Contains(t, out, "Paris")

	out, err = runCLI(t, "session", "show", "--json", "--config", cfg, created.Session)
	require.NoError(t, err)
	var snap struct {
		ID      string                    `json:"id"`
		Summary string                    `json:"summary"`
		History []domain.ConversationTurn `json:"history"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, created.Session, snap.ID)
	assert.Equal(t, parisDoc, snap.Summary)
	require.Len(t, snap.History, 1)
	assert.Equal(t, "What is the capital of France?", snap.History[0].Question)

	out, err = runCLI(t, "session", "reset", "--config", cfg, created.Session)
	require.NoError(t, err)
	assert.Contains(t, out, "Challenge reset")
}

func TestSessionShow_NotFound(t *testing.T) {
	cfg, _ := setupWorkspace(t, memoryConfig)

	_, err := runCLI(t, "session", "show", "--config", cfg, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadConfig_InvalidBackend(t *testing.T) {
	cfg, doc := setupWorkspace(t, "ranker:\n  backend: bm25\n")

	_, err := runCLI(t, "summarize", "--config", cfg, doc)
	require.Error(t, err)
}

func TestMetricsFile(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)
	path := filepath.Join(t.TempDir(), "docinsight.prom")

	_, err := runCLI(t, "ask", "--config", cfg, "--metrics-file", path, doc, "What is the capital of France?")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `docinsight_rank_calls_total{backend="tfidf"} 1`)
	assert.Contains(t, out, "docinsight_sessions_created_total 1")
}

func TestMetricsFile_Evaluation(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)
	path := filepath.Join(t.TempDir(), "docinsight.prom")

	_, err := runCLI(t, "evaluate", "--config", cfg, "--metrics-file", path, "--answer", "Paris is the capital.", doc)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "docinsight_evaluation_score_count 1")
}

func TestMetricsFile_NotWrittenWithoutFlag(t *testing.T) {
	cfg, doc := setupWorkspace(t, memoryConfig)
	dir := filepath.Dir(cfg)

	_, err := runCLI(t, "summarize", "--config", cfg, doc)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "only the config and the document")
}

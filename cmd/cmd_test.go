package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cascade/internal/store"
)

// run executes the root command with args against a temp database.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--db", db, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"CASCADE_LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "CASCADE_STORE_DRIVER", "CASCADE_STORE_DSN", "CASCADE_CATALOG"} {
		t.Setenv(k, "")
	}
	return filepath.Join(dir, "cascade.db")
}

func TestSimulateStatsExportReset(t *testing.T) {
	db := testEnv(t)

	out, err := run(t, db, "simulate", "--levels", "2", "--accuracy", "1", "--hint-rate", "0",
		"--think", "0s", "--period", "5ms", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "2 levels in")

	out, err = run(t, db, "stats", "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "Levels:      2")
	assert.Contains(t, out, "| complete |")

	exported := filepath.Join(filepath.Dir(db), "actions.jsonl")
	out, err = run(t, db, "export", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "exported")
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(data)))

	_, err = run(t, db, "reset")
	require.Error(t, err, "reset needs --yes")

	out, err = run(t, db, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	out, err = run(t, db, "stats", "--markdown=false")
	require.NoError(t, err)
	assert.Contains(t, out, "No levels played yet.")
}

func TestCatalogCommands(t *testing.T) {
	db := testEnv(t)

	out, err := run(t, db, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Pathway")

	out, err = run(t, db, "catalog", "dump")
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(out), 0o644))

	out, err = run(t, db, "catalog", "validate", file)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("format: v9.0.0\nname: x\nfactors: []\n"), 0o644))
	_, err = run(t, db, "catalog", "validate", bad)
	require.Error(t, err)
}

func TestLLMStats_Empty(t *testing.T) {
	db := testEnv(t)
	out, err := run(t, db, "llm", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM usage recorded yet.")
}

func TestAggregate(t *testing.T) {
	events := []store.LLMRequestEvent{
		{LLMRequestEventData: store.LLMRequestEventData{Model: "b", InputTokens: 5}},
		{LLMRequestEventData: store.LLMRequestEventData{Model: "a", InputTokens: 10}},
		{LLMRequestEventData: store.LLMRequestEventData{Model: "a", InputTokens: 20}},
	}
	got := aggregate(events, func(e store.LLMRequestEvent) string { return e.Model })
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].key)
	assert.Equal(t, 2, got[0].calls)
	assert.Equal(t, 30, got[0].inputTokens)
}

func TestVersion(t *testing.T) {
	db := testEnv(t)
	out, err := run(t, db, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cascade "))
}

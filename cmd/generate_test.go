package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/codedrill/internal/learnpath"
)

const legacyBody = `{"problems":[{"statement":"Reverse a string","example":"abc -> cba","hints":["two pointers"],"objectives":["strings"]}]}`

// runRoot executes the root command against a stub generator. Flag values
// persist across Execute calls, so every test passes the flags it relies on.
func runRoot(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	return runRootDB(t, handler, filepath.Join(t.TempDir(), "codedrill.db"), args...)
}

// runRootDB is runRoot against a caller-chosen database file.
func runRootDB(t *testing.T, handler http.HandlerFunc, dbPath string, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("CODEDRILL_BASE_URL", srv.URL)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--db", dbPath))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func legacyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(legacyBody))
}

func TestGenerateText(t *testing.T) {
	out, err := runRoot(t, legacyHandler, "generate", "--topic", "strings", "--language", "go", "--difficulty", "beginner", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Level 1: Problem 1")
	assert.Contains(t, out, "Reverse a string")
	assert.Contains(t, out, "two pointers")
}

func TestGenerateJSON(t *testing.T) {
	out, err := runRoot(t, legacyHandler, "generate", "-t", "strings", "-l", "go", "-d", "beginner", "-f", "json")
	require.NoError(t, err)

	var lp learnpath.LearningPath
	require.NoError(t, json.Unmarshal([]byte(out), &lp))
	require.Len(t, lp.Problems, 1)
	assert.Equal(t, []string{"strings"}, lp.Problems[0].Concepts)
}

func TestGenerateYAML(t *testing.T) {
	out, err := runRoot(t, legacyHandler, "generate", "-t", "strings", "-l", "go", "-d", "beginner", "-f", "yaml")
	require.NoError(t, err)

	var lp learnpath.LearningPath
	require.NoError(t, yaml.Unmarshal([]byte(out), &lp))
	require.Len(t, lp.Problems, 1)
	assert.Equal(t, "Reverse a string", lp.Problems[0].Description)
}

func TestGenerateServerError(t *testing.T) {
	_, err := runRoot(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Topic is too vague"}`))
	}, "generate", "-t", "stuff", "-l", "go", "-d", "beginner", "-f", "text")
	require.Error(t, err)
	assert.Equal(t, "Topic is too vague", err.Error())
}

func TestGenerateRejectsBadFormat(t *testing.T) {
	_, err := runRoot(t, legacyHandler, "generate", "-t", "x", "-l", "go", "-d", "beginner", "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestGenerateRejectsBadDifficulty(t *testing.T) {
	_, err := runRoot(t, legacyHandler, "generate", "-t", "x", "-l", "go", "-d", "expert", "-f", "text")
	assert.ErrorContains(t, err, "invalid difficulty")
}

package cmd

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsRecordGenerate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "codedrill.db")

	_, err := runRootDB(t, legacyHandler, db, "generate", "-t", "strings", "-l", "go", "-d", "beginner", "-f", "json")
	require.NoError(t, err)
	_, err = runRootDB(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, db, "generate", "-t", "graphs", "-l", "go", "-d", "beginner", "-f", "json")
	require.Error(t, err)

	out, err := runRootDB(t, legacyHandler, db, "events", "list", "-n", "10", "--topic", "", "--failed=false", "--since", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "strings")
	assert.Contains(t, out, "graphs")

	out, err = runRootDB(t, legacyHandler, db, "events", "list", "-n", "10", "--topic", "", "--failed=true", "--since", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "graphs")
	assert.NotContains(t, out, "strings")

	out, err = runRootDB(t, legacyHandler, db, "events", "list", "-n", "10", "--topic", "", "--failed=false", "--since", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "strings", "calls made just now are inside the window")

	out, err = runRootDB(t, legacyHandler, db, "events", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "50.0")
}

func TestEventsViewMissing(t *testing.T) {
	_, err := runRoot(t, legacyHandler, "events", "view", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

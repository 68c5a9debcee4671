package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dbPath string, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--format", "json", "--db", dbPath}, args...))
	err := root.ExecuteContext(context.Background())
	require.NoError(t, err)
	return out.Bytes()
}

func TestCreateCommand_Golden(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	got := runCLI(t, dbPath, "create", "a", "1", "--type", "int")

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "create_success", got)
}

func TestCheckCommand_Golden(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	got := runCLI(t, dbPath, "check")

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "check_consistent", got)
}

func TestLsCommand_Golden(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	got := runCLI(t, dbPath, "ls")

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "ls_empty_root", got)
}

func TestRmCommand_Golden(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	runCLI(t, dbPath, "create", "a", "1", "--type", "int")
	got := runCLI(t, dbPath, "rm", "a")

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "rm_success", got)
}

func TestGetCommand_ReturnsValueAndRevision(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	runCLI(t, dbPath, "create", "a", "hello")
	got := runCLI(t, dbPath, "get", "a")

	require.Contains(t, string(got), `"value":"hello"`)
	require.Contains(t, string(got), `"type":"Text"`)
	require.Contains(t, string(got), `"revision":`)
}

func TestSetCommand_OverwritesExistingValue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	runCLI(t, dbPath, "create", "a", "one")
	runCLI(t, dbPath, "set", "a", "two")
	got := runCLI(t, dbPath, "get", "a")

	require.Contains(t, string(got), `"value":"two"`)
}

func TestCreateCommand_CollisionReportsError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	runCLI(t, dbPath, "create", "a", "one")
	got := runCLI(t, dbPath, "create", "a", "two")

	require.Contains(t, string(got), `"status":"error"`)
	require.Contains(t, string(got), "E_CREATE")
}

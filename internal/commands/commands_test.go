package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maconomy-cli/maconomy/internal/db"
	"github.com/maconomy-cli/maconomy/internal/maconomy/maconomytest"
	"github.com/maconomy-cli/maconomy/internal/models"
)

var monday46 = time.Date(2024, time.November, 11, 0, 0, 0, 0, time.UTC)

// setupEnv points HOME and the working directory at temp dirs, writes a
// config for url and stores a session cookie so no sign-in is needed.
func setupEnv(t *testing.T, url string) {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if url == "" {
		return
	}

	storage := filepath.Join(home, "maconomy.db")
	config := fmt.Sprintf("maconomy_url = %q\ncompany_id = \"company1\"\n\n[storage]\npath = %q\n", url, storage)
	require.NoError(t, os.WriteFile(filepath.Join(work, "config.toml"), []byte(config), 0600))

	require.NoError(t, db.Initialize(storage))
	require.NoError(t, db.CookieStore{}.SaveCookie(models.AuthCookie{Name: "Maconomy-test", Value: "cookie"}))
	require.NoError(t, db.Close())
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns what it wrote to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { _ = db.Close() })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

var testJobs = []maconomytest.Job{
	{Number: "ABC123", Name: "Job One", Tasks: []maconomytest.Task{{Name: "300", Description: "Some task one"}}},
}

func TestSetThenGet(t *testing.T) {
	srv := maconomytest.NewServer(testJobs...)
	t.Cleanup(srv.Close)
	setupEnv(t, srv.URL)

	out, err := execute(t, "set", "7.5", "--job", "Job One", "--task", "Some task one",
		"--day", "mon, wed", "--week", "46", "--year", "2024")
	require.NoError(t, err)
	assert.Equal(t, "Set 7.5 hours on Mon, Wed in week 2024W46\n", out)

	rows := srv.Rows(monday46)
	require.Len(t, rows, 1)
	assert.Equal(t, [7]float64{7.5, 0, 7.5, 0, 0, 0, 0}, rows[0].Hours)

	out, err = execute(t, "get", "--week", "46", "--year", "2024", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"task": "Some task one"`)
	assert.Contains(t, out, `"wednesday": 7.5`)

	out, err = execute(t, "get", "--week", "46", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Week 2024W46")
	assert.Contains(t, out, "Some task one")
}

func TestClearAndDeleteLine(t *testing.T) {
	srv := maconomytest.NewServer(testJobs...)
	t.Cleanup(srv.Close)
	srv.InitializeWeek(monday46, maconomytest.Row{JobNumber: "ABC123", TaskName: "300", Hours: [7]float64{8, 8}})
	setupEnv(t, srv.URL)

	_, err := execute(t, "clear", "-j", "job one", "-t", "some task one", "-d", "tue", "-w", "46", "-y", "2024")
	require.NoError(t, err)
	assert.Equal(t, [7]float64{8}, srv.Rows(monday46)[0].Hours)

	out, err := execute(t, "line", "delete", "last", "-w", "46", "-y", "2024")
	require.NoError(t, err)
	assert.Equal(t, "Deleted line last in week 2024W46\n", out)
	assert.Empty(t, srv.Rows(monday46))
}

func TestSubmit(t *testing.T) {
	srv := maconomytest.NewServer(testJobs...)
	t.Cleanup(srv.Close)
	srv.InitializeWeek(monday46)
	setupEnv(t, srv.URL)

	out, err := execute(t, "submit", "--week", "46", "--year", "2024")
	require.NoError(t, err)
	assert.Equal(t, "Submitted week 2024W46\n", out)
	assert.True(t, srv.Submitted(monday46))
}

func TestUnknownJob(t *testing.T) {
	srv := maconomytest.NewServer(testJobs...)
	t.Cleanup(srv.Close)
	srv.InitializeWeek(monday46)
	setupEnv(t, srv.URL)

	_, err := execute(t, "set", "8", "--job", "Nope", "--task", "Some task one", "--week", "46", "--year", "2024", "--day", "mon")
	require.Error(t, err)
	assert.Equal(t, "job 'Nope' not found", err.Error())
}

func TestMissingConfiguration(t *testing.T) {
	setupEnv(t, "")

	_, err := execute(t, "get")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration value `maconomy_url` is missing")
}

func TestRequiredFlags(t *testing.T) {
	setupEnv(t, "")

	_, err := execute(t, "set", "8", "--task", "Some task one")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job")
}

func TestVersion(t *testing.T) {
	setupEnv(t, "")
	SetVersion("1.2.3", "abc", "2024-11-11")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "maconomy 1.2.3 (commit abc, built 2024-11-11)\n", out)
}

func TestInvalidLogLevelInConfig(t *testing.T) {
	setupEnv(t, "")
	require.NoError(t, os.WriteFile("config.toml", []byte("[log]\nlevel = \"chatty\"\n"), 0600))
	resetFlags(rootCmd)

	err := setup(versionCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test with HOME and the working directory pointing at
// fresh temp dirs so no real config leaks in.
func inTempDir(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return work
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".config", "maconomy-cli", "maconomy.db"), cfg.Storage.Path)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maconomy_url")
}

func TestLoadFromFileAndEnv(t *testing.T) {
	work := inTempDir(t)

	content := `
maconomy_url = "https://maconomy.example.com/"
company_id = "company1"

[authentication.sso]
login_url = "https://maconomy.example.com/login"
timeout = "90s"
`
	require.NoError(t, os.WriteFile(filepath.Join(work, "config.toml"), []byte(content), 0600))
	t.Setenv("MACONOMY_COMPANY_ID", "company2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://maconomy.example.com", cfg.MaconomyURL)
	assert.Equal(t, "company2", cfg.CompanyID)
	assert.Equal(t, "https://maconomy.example.com/login", cfg.Auth.LoginURL)
	assert.Equal(t, 90*time.Second, cfg.Auth.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestUserConfigIsOverriddenByLocalConfig(t *testing.T) {
	work := inTempDir(t)

	dir, err := Dir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("maconomy_url = \"https://user.example.com\"\ncompany_id = \"user\"\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(work, "config.toml"),
		[]byte("company_id = \"local\"\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://user.example.com", cfg.MaconomyURL)
	assert.Equal(t, "local", cfg.CompanyID)
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	for _, timeout := range []string{"soon", "0s", "-1m"} {
		t.Run(timeout, func(t *testing.T) {
			work := inTempDir(t)
			content := "[authentication.sso]\ntimeout = \"" + timeout + "\"\n"
			require.NoError(t, os.WriteFile(filepath.Join(work, "config.toml"), []byte(content), 0600))

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "authentication.sso.timeout")
		})
	}
}

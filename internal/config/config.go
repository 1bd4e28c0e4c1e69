package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "MACONOMY"
	configName = "config"
	appDirName = "maconomy-cli"
)

// Config holds everything the CLI needs to talk to Maconomy
type Config struct {
	MaconomyURL string
	CompanyID   string

	Auth    AuthConfig
	Storage StorageConfig
	Log     LogConfig
}

type AuthConfig struct {
	LoginURL string
	// Timeout bounds the wait for the user to finish signing in
	Timeout time.Duration
}

type StorageConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from (later sources win):
// ~/.config/maconomy-cli/config.toml, ./config.toml, ./.env and MACONOMY_* environment variables
// e.g. MACONOMY_AUTHENTICATION__SSO__LOGIN_URL sets authentication.sso.login_url
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	for _, path := range []string{filepath.Join(dir, configName+".toml"), configName + ".toml"} {
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	return fromViper(v)
}

// Dir is the per-user directory holding config and local state
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".config", appDirName), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("maconomy_url", "")
	v.SetDefault("company_id", "")
	v.SetDefault("authentication.sso.login_url", "")
	v.SetDefault("authentication.sso.timeout", "5m")
	v.SetDefault("storage.path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "auto")
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := parseDuration("authentication.sso.timeout", v.GetString("authentication.sso.timeout"), 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MaconomyURL: strings.TrimRight(v.GetString("maconomy_url"), "/"),
		CompanyID:   v.GetString("company_id"),
		Auth: AuthConfig{
			LoginURL: v.GetString("authentication.sso.login_url"),
			Timeout:  timeout,
		},
		Storage: StorageConfig{
			Path: v.GetString("storage.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.Storage.Path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfg.Storage.Path = filepath.Join(dir, "maconomy.db")
	}

	return cfg, nil
}

// Validate checks the values needed to reach the Maconomy server
func (c *Config) Validate() error {
	required := map[string]string{
		"maconomy_url": c.MaconomyURL,
		"company_id":   c.CompanyID,
	}
	for _, key := range []string{"maconomy_url", "company_id"} {
		if required[key] == "" {
			return MissingValueError(key)
		}
	}
	return nil
}

// MissingValueError explains where a missing setting should go
func MissingValueError(key string) error {
	return goerr.New("configuration value `"+key+"` is missing. Please set it in ./config.toml or ~/.config/maconomy-cli/config.toml",
		goerr.V("key", key))
}

// parseDuration reads a positive duration such as "90s"; empty means fallback
func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, goerr.Wrap(err, "configuration value `"+key+"` is not a valid duration", goerr.V("value", value))
	}
	if d <= 0 {
		return 0, goerr.New("configuration value `"+key+"` must be positive", goerr.V("value", value))
	}
	return d, nil
}

package cli

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	errs "github.com/matzehuels/depman/pkg/errors"
)

const (
	envPrefix          = "DEPMAN"
	configName         = "depman"
	defaultManifest    = "requirements.txt"
	defaultCacheTTL    = 24 * time.Hour
	defaultConcurrency = 5
)

// Config is the merged result of flags, environment, .env and the config
// file, in that order of precedence.
type Config struct {
	File        string        `mapstructure:"file"`
	GitHubToken string        `mapstructure:"github_token"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CacheDir    string        `mapstructure:"cache_dir"`
	Concurrency int           `mapstructure:"concurrency"`
	NoCache     bool          `mapstructure:"no_cache"`
	PyPIURL     string        `mapstructure:"pypi_url"`
	GitHubURL   string        `mapstructure:"github_url"`
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"file":     "file",
	"no_cache": "no-cache",
}

// loadConfig reads configuration into a fresh viper instance. configFile,
// when set, must exist; otherwise depman.yaml is looked up in the working
// directory and in $XDG_CONFIG_HOME/depman, and its absence is not an error.
func loadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// A .env file is optional.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv("github_token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	v.SetDefault("file", defaultManifest)
	v.SetDefault("cache_ttl", defaultCacheTTL)
	v.SetDefault("concurrency", defaultConcurrency)
	// Keys without a default are invisible to Unmarshal under AutomaticEnv.
	for _, key := range []string{"cache_dir", "pypi_url", "github_url"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("no_cache", false)

	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "failed to read config file %s", configFile)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "failed to read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid configuration")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &cfg, nil
}

// configDir is $XDG_CONFIG_HOME/depman, or ~/.config/depman.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

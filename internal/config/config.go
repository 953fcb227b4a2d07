// Package config resolves where the backend lives and where client state is
// kept. Precedence for the API base URL: DATAPUUR_API_URL env (including a
// .env file in the working directory) > api_url in the config file > built-in
// default, mirroring how the dashboard resolved runtime config, env, then its
// own origin.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultBaseURL is used when nothing else names the backend.
const DefaultBaseURL = "http://localhost:9090"

const (
	appDirName  = "datapuur"
	cfgKeyAPI   = "api_url"
	cfgKeyJSON  = "json_output"
	envPrefix   = "DATAPUUR"
	cfgFileName = "config"
)

// Config is the resolved client configuration.
type Config struct {
	BaseURL    string
	ConfigDir  string
	JSONOutput bool
	Verbose    bool
}

// Load resolves configuration. dirOverride, when non-empty, replaces the
// default user config directory (used by tests and the --config-dir flag).
func Load(dirOverride string) (*Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	dir := dirOverride
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "locate user config dir")
		}
		dir = filepath.Join(base, appDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create config dir %s", dir)
	}

	v := viper.New()
	v.SetConfigName(cfgFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(cfgKeyAPI, DefaultBaseURL)
	v.SetDefault(cfgKeyJSON, false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	return &Config{
		BaseURL:    v.GetString(cfgKeyAPI),
		ConfigDir:  dir,
		JSONOutput: v.GetBool(cfgKeyJSON),
	}, nil
}

// Package config loads the jolokia CLI configuration from a YAML file,
// JOLOKIA_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "JOLOKIA"

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config is the CLI configuration
type Config struct {
	URL      string        `mapstructure:"url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Insecure bool          `mapstructure:"insecure"`
	CAFile   string        `mapstructure:"ca_file"`
	Output   string        `mapstructure:"output"`
	Log      LogConfig     `mapstructure:"log"`
	Retry    RetryConfig   `mapstructure:"retry"`
	// RateLimit is the maximum requests per second; zero disables limiting
	RateLimit float64 `mapstructure:"rate_limit"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// RetryConfig enables the reliability middleware when MaxRetries > 0
type RetryConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// flagKeys maps configuration keys to the flag names bound to them
var flagKeys = map[string]string{
	"url":       "url",
	"username":  "username",
	"password":  "password",
	"timeout":   "timeout",
	"insecure":  "insecure",
	"output":    "output",
	"log.level": "log-level",
}

// Load merges defaults, the config file, environment and flags, in
// increasing priority. file overrides the search for jolokia.yaml in the
// working directory and $HOME/.jolokia; a missing searched file is not an
// error, a missing explicit file is.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("jolokia")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".jolokia"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("url", "http://localhost:8778/jolokia")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("token", "")
	v.SetDefault("insecure", false)
	v.SetDefault("ca_file", "")
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("output", OutputTable)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("retry.max_retries", 0)
	v.SetDefault("retry.initial_delay", 200*time.Millisecond)
	v.SetDefault("retry.max_delay", 5*time.Second)
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("unsupported output %q, use %s or %s", c.Output, OutputTable, OutputJSON)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Username != "" && c.Token != "" {
		return errors.New("username and token are mutually exclusive")
	}
	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	return nil
}

// TransportConfig translates the configuration into a transport configuration
func (c *Config) TransportConfig() transport.TransportConfig {
	tc := transport.DefaultTransportConfig(transport.TransportTypeHTTP)
	tc.Connection.Timeout = c.Timeout
	tc.Performance.RequestTimeout = c.Timeout

	switch {
	case c.Username != "":
		tc.Features.EnableAuthentication = true
		tc.Security.Authentication = &transport.AuthenticationConfig{
			Type:     "basic",
			Username: c.Username,
			Password: c.Password,
		}
	case c.Token != "":
		tc.Features.EnableAuthentication = true
		tc.Security.Authentication = &transport.AuthenticationConfig{
			Type:  "bearer",
			Token: c.Token,
		}
	}

	if c.Insecure || c.CAFile != "" {
		tc.Security.TLS = &transport.TLSConfig{
			InsecureSkipVerify: c.Insecure,
			CAFile:             c.CAFile,
		}
	}

	if c.Retry.MaxRetries > 0 {
		tc.Features.EnableReliability = true
		tc.Reliability.MaxRetries = c.Retry.MaxRetries
		tc.Reliability.InitialRetryDelay = c.Retry.InitialDelay
		tc.Reliability.MaxRetryDelay = c.Retry.MaxDelay
	}

	if c.RateLimit > 0 {
		tc.Features.EnableRateLimiting = true
		tc.Security.RateLimit = &transport.RateLimitConfig{RequestsPerSecond: c.RateLimit}
	}

	return tc
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

type Config struct {
	API           APIConfig           `mapstructure:"api"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Token         string              `mapstructure:"token"`

	// FileErr is set when the config file exists but could not be read.
	// The rest of the config then comes from defaults and the environment.
	FileErr error `mapstructure:"-"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds the registered application used by login.
type AuthConfig struct {
	ClientID       string `mapstructure:"client_id"`
	ClientRedirect string `mapstructure:"client_redirect"`
}

type ObservabilityConfig struct {
	LogLevel      string `mapstructure:"log_level"`
	EnableTracing bool   `mapstructure:"enable_tracing"`
}

// DefaultPath is the config file in the user's XDG config directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "yandex-money-cli", "config.toml")
}

// Load reads the TOML file at path, if it exists, and overlays the
// environment. TOKEN, CLIENT_ID and CLIENT_REDIRECT are read unprefixed;
// everything else uses the YAMONEY_ prefix, e.g. YAMONEY_API_BASE_URL or
// YAMONEY_LOG_LEVEL. An unreadable file does not fail Load; it is reported
// in Config.FileErr so that login can still overwrite it.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("YAMONEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("token", "TOKEN")
	_ = v.BindEnv("auth.client_id", "CLIENT_ID")
	_ = v.BindEnv("auth.client_redirect", "CLIENT_REDIRECT")
	_ = v.BindEnv("observability.log_level", "YAMONEY_LOG_LEVEL")

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	// Config file is optional
	var fileErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			fileErr = fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.FileErr = fileErr

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		errs = append(errs, fmt.Errorf("observability.log_level %q is not a known level", c.Observability.LogLevel))
	}

	return errors.Join(errs...)
}

// Authorized reports whether a token was resolved from the environment or
// the config file.
func (c *Config) Authorized() bool {
	return c.Token != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://money.yandex.ru")
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("auth.client_id", "")
	v.SetDefault("auth.client_redirect", "")

	v.SetDefault("observability.log_level", "warn")
	v.SetDefault("observability.enable_tracing", false)

	v.SetDefault("token", "")
}

// TokenStore persists the permanent token in the config file, keeping any
// other keys already there. A file that does not parse as TOML is replaced.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

func (s *TokenStore) Path() string {
	return s.path
}

func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		var parseErr viper.ConfigParseError
		switch {
		case errors.As(err, &notFound):
		case errors.As(err, &parseErr):
			v = viper.New()
			v.SetConfigType("toml")
		default:
			return fmt.Errorf("read config file: %w", err)
		}
	}

	v.Set("token", token)
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return os.Chmod(s.path, 0o600)
}

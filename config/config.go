// Package config loads runtime settings from a .env file, an optional YAML file
// and the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/logger"
	"github.com/blogem/authsession/models"
)

type Config struct {
	Auth struct {
		Authority       string        `yaml:"authority"`
		ClientID        string        `yaml:"client_id"`
		ClientSecret    string        `yaml:"client_secret"`
		RedirectURL     string        `yaml:"redirect_url"`
		Scopes          []string      `yaml:"scopes"`
		LoginType       string        `yaml:"login_type"`
		TokenRefreshURI string        `yaml:"token_refresh_uri"`
		PopupTimeout    time.Duration `yaml:"popup_timeout"`
		// Extra query parameters sent with every interactive request, e.g. domain_hint
		ExtraQueryParameters map[string]string `yaml:"extra_query_parameters"`
	} `yaml:"auth"`

	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`

	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Keyring struct {
		Service string `yaml:"service"`
	} `yaml:"keyring"`

	Log struct {
		Level             string `yaml:"level"`
		SentryDSN         string `yaml:"sentry_dsn"`
		SentryEnvironment string `yaml:"sentry_environment"`
	} `yaml:"log"`

	// envErrs holds environment values that could not be parsed
	envErrs []error
}

// Load reads .env (if present), then AUTH_CONFIG_FILE (if set), then environment overrides
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("AUTH_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Auth.Scopes = []string{"openid", "profile"}
	cfg.Auth.LoginType = string(models.LoginTypePopup)
	cfg.Auth.PopupTimeout = 5 * time.Minute
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "8080"
	cfg.Database.Path = "authsession.db"
	cfg.Keyring.Service = "authsession"
	cfg.Log.Level = "info"
	cfg.Log.SentryEnvironment = "production"
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Auth.Authority, "AUTH_AUTHORITY")
	setString(&c.Auth.ClientID, "AUTH_CLIENT_ID")
	setString(&c.Auth.ClientSecret, "AUTH_CLIENT_SECRET")
	setString(&c.Auth.RedirectURL, "AUTH_REDIRECT_URL")
	setString(&c.Auth.LoginType, "AUTH_LOGIN_TYPE")
	setString(&c.Auth.TokenRefreshURI, "AUTH_TOKEN_REFRESH_URI")
	setString(&c.API.BaseURL, "API_BASE_URL")
	setString(&c.Server.Host, "SERVER_HOST")
	setString(&c.Server.Port, "PORT")
	setString(&c.Database.Path, "DATABASE_PATH")
	setString(&c.Keyring.Service, "KEYRING_SERVICE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.SentryDSN, "SENTRY_DSN")
	setString(&c.Log.SentryEnvironment, "SENTRY_ENVIRONMENT")

	if v := os.Getenv("AUTH_SCOPES"); v != "" {
		c.Auth.Scopes = splitScopes(v)
	}
	if v := os.Getenv("AUTH_POPUP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			c.envErrs = append(c.envErrs, fmt.Errorf("invalid AUTH_POPUP_TIMEOUT %q: %w", v, err))
		} else {
			c.Auth.PopupTimeout = d
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// splitScopes accepts space or comma separated scopes
func splitScopes(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

// Validate reports every missing or invalid required value
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.Authority == "" {
		errs = append(errs, errors.New("AUTH_AUTHORITY is required"))
	}
	if c.Auth.ClientID == "" {
		errs = append(errs, errors.New("AUTH_CLIENT_ID is required"))
	}
	if c.Auth.RedirectURL == "" {
		errs = append(errs, errors.New("AUTH_REDIRECT_URL is required"))
	}
	if _, err := models.ParseLoginType(c.Auth.LoginType); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, c.envErrs...)
	return errors.Join(errs...)
}

// ListenAddr returns the address the HTTP server binds to
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// ClientConfig returns the identity client configuration
func (c *Config) ClientConfig() authenticator.Config {
	return authenticator.Config{
		Authority:    c.Auth.Authority,
		ClientID:     c.Auth.ClientID,
		ClientSecret: c.Auth.ClientSecret,
		RedirectURL:  c.Auth.RedirectURL,
		Scopes:       c.Auth.Scopes,
		PopupTimeout: c.Auth.PopupTimeout,
	}
}

// AuthenticationParameters returns the baseline request parameters
func (c *Config) AuthenticationParameters() models.AuthenticationParameters {
	return models.AuthenticationParameters{
		Scopes:               c.Auth.Scopes,
		ExtraQueryParameters: c.Auth.ExtraQueryParameters,
	}.Clone()
}

// ProviderOptions returns the provider options; an invalid login type falls back to popup
func (c *Config) ProviderOptions() models.ProviderOptions {
	loginType, err := models.ParseLoginType(c.Auth.LoginType)
	if err != nil {
		loginType = models.LoginTypePopup
	}
	return models.ProviderOptions{
		LoginType:       loginType,
		TokenRefreshURI: c.Auth.TokenRefreshURI,
	}
}

// SentryConfig returns the logger's Sentry settings
func (c *Config) SentryConfig() logger.SentryConfig {
	return logger.SentryConfig{
		DSN:         c.Log.SentryDSN,
		Environment: c.Log.SentryEnvironment,
		Level:       logger.ParseLevel(c.Log.Level),
	}
}

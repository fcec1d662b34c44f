package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "PLACEBOARD"
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultDatabasePath   = "placeboard.db"
	defaultLogLevel       = "info"
	defaultAPIBaseURL     = "http://localhost:8080"
	defaultTokenTTLMinute = 720
)

// ServerConfig captures runtime configuration for the API server.
type ServerConfig struct {
	HTTPAddress   string
	DatabasePath  string
	SigningSecret string
	TokenTTL      time.Duration
	LogLevel      string
}

// ClientConfig captures runtime configuration for the terminal client.
type ClientConfig struct {
	APIBaseURL  string
	MapsAPIKey  string
	SessionPath string
	LogLevel    string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("token.ttl_minutes", defaultTokenTTLMinute)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("api.base_url", defaultAPIBaseURL)
	configViper.SetDefault("session.path", defaultSessionPath())
}

// LoadServer parses API server configuration from viper.
func LoadServer(configViper *viper.Viper) (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddress:   configViper.GetString("http.address"),
		DatabasePath:  configViper.GetString("database.path"),
		SigningSecret: configViper.GetString("auth.signing_secret"),
		TokenTTL:      time.Duration(configViper.GetInt("token.ttl_minutes")) * time.Minute,
		LogLevel:      configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return ServerConfig{}, err
	}

	return cfg, nil
}

// LoadClient parses terminal client configuration from viper.
func LoadClient(configViper *viper.Viper) (ClientConfig, error) {
	cfg := ClientConfig{
		APIBaseURL:  configViper.GetString("api.base_url"),
		MapsAPIKey:  configViper.GetString("maps.api_key"),
		SessionPath: configViper.GetString("session.path"),
		LogLevel:    configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

func (c ServerConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token.ttl_minutes must be positive")
	}
	return nil
}

func (c ClientConfig) validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if strings.TrimSpace(c.SessionPath) == "" {
		return fmt.Errorf("session.path is required")
	}
	return nil
}

func defaultSessionPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "placeboard-session.json"
	}
	return filepath.Join(configDir, "placeboard", "session.json")
}

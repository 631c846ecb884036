// Package config loads the command line client's settings from defaults, an
// optional YAML file, PROMPTBUILDER_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName   = "promptbuilder"
	envPrefix = "PROMPTBUILDER"

	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Framing  FramingConfig  `mapstructure:"framing"`
	Session  SessionConfig  `mapstructure:"session"`
	Document DocumentConfig `mapstructure:"document"`
	UI       UIConfig       `mapstructure:"ui"`
}

type BackendConfig struct {
	URL       string `mapstructure:"url"`
	Transport string `mapstructure:"transport"` // "http" or "websocket"
	// Timeout bounds a whole request, zero disables it.
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`
}

type FramingConfig struct {
	Marker   string `mapstructure:"marker"`
	Sentinel string `mapstructure:"sentinel"`
}

type SessionConfig struct {
	FailureMessage string `mapstructure:"failure_message"`
	ModelName      string `mapstructure:"model_name"`
}

type DocumentConfig struct {
	Path          string `mapstructure:"path"`
	ReferencePath string `mapstructure:"reference_path"`
}

type UIConfig struct {
	Plain bool `mapstructure:"plain"`
}

// Binder attaches flags or other overrides to the viper instance before
// the configuration is decoded.
type Binder func(v *viper.Viper) error

// LoadConfig reads configuration from configPath, or from promptbuilder.yaml
// in the working directory or the user config directory when configPath is
// empty. A missing config file is not an error.
func LoadConfig(configPath string, binders ...Binder) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if configDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configDir, appName))
		}
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
	}

	v.SetDefault("backend.url", "http://localhost:3000/api/prompt-builder/chat")
	v.SetDefault("backend.transport", TransportHTTP)
	v.SetDefault("backend.timeout", "0s")
	v.SetDefault("backend.headers", map[string]string{})

	v.SetDefault("framing.marker", "data: ")
	v.SetDefault("framing.sentinel", "[DONE]")

	v.SetDefault("session.failure_message", "Sorry, something went wrong. Please try again.")
	v.SetDefault("session.model_name", "gpt-4o-mini")

	v.SetDefault("document.path", "prompt.yaml")
	v.SetDefault("document.reference_path", "")

	v.SetDefault("ui.plain", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for _, bind := range binders {
		if err := bind(v); err != nil {
			return nil, fmt.Errorf("failed to bind configuration: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Backend.URL) == "" {
		errs = append(errs, errors.New("backend.url must be set"))
	}
	switch c.Backend.Transport {
	case TransportHTTP, TransportWebSocket:
	default:
		errs = append(errs, fmt.Errorf("backend.transport must be %q or %q, got %q", TransportHTTP, TransportWebSocket, c.Backend.Transport))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must not be negative"))
	}
	if c.Framing.Marker == "" {
		errs = append(errs, errors.New("framing.marker must not be empty"))
	}
	if c.Framing.Sentinel == "" {
		errs = append(errs, errors.New("framing.sentinel must not be empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/async-button/internal/domain/button"
)

// Config holds the settings of the async-button binaries.
type Config struct {
	// ServerAddress is the gRPC address of the button server.
	ServerAddress string `yaml:"server_addr"`
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// StateFile is where the fetch state is persisted.
	StateFile string `yaml:"state_file"`
	// ContentURL is the root URL of the content server the button fetches from.
	ContentURL string `yaml:"content_url"`
	// UpdateFolder is the URL where update artifacts are hosted.
	UpdateFolder string `yaml:"update_folder,omitempty"`
	// Timeout bounds network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// Button configures the coordinator. Zero periods take their defaults.
	Button button.Config `yaml:"button"`
}

const (
	// DefaultConfigFilename is the default settings file.
	DefaultConfigFilename = "async-button-settings.yaml"

	// DefaultStateFilename is the default fetch state file.
	DefaultStateFilename = "async-button-state.yaml"

	// DefaultContentURL is the default content server root.
	DefaultContentURL = "http://localhost:8000"

	// DefaultLabel is the button title when none is configured.
	DefaultLabel = "Fetch"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is used for every file the binaries write.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerAddressRequired is returned when the server address is missing.
	errServerAddressRequired = errors.New("server address must be provided")
)

// Load reads configuration from path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save validates cfg and writes it to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if cfg.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.ContentURL == "" {
		cfg.ContentURL = DefaultContentURL
	}

	if _, err := url.ParseRequestURI(cfg.ContentURL); err != nil {
		return fmt.Errorf("invalid content url: %w", err)
	}

	if cfg.Button.Label == "" {
		cfg.Button.Label = DefaultLabel
	}

	if err := cfg.Button.Validate(); err != nil {
		return fmt.Errorf("invalid button settings: %w", err)
	}

	cfg.Button = cfg.Button.WithDefaults()

	if cfg.UpdateFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.UpdateFolder); err != nil {
		return fmt.Errorf("invalid update folder URI: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/reelstack-io/reelstack/internal/provision"
)

// Environment override for the externally-supplied search credential, so the
// key never has to live in the manifest.
const envSearchKey = "REELSTACK_SEARCH_KEY"

// Config is the deployment manifest.
type Config struct {
	Stack     string          `yaml:"stack" validate:"required"`
	Region    string          `yaml:"region" validate:"required"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Site      SiteConfig      `yaml:"site"`
	Provision ProvisionConfig `yaml:"provision"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StorageConfig describes the static-hosting storage resource.
type StorageConfig struct {
	Bucket        string `yaml:"bucket" validate:"required"`
	IndexDocument string `yaml:"index_document"`
	ErrorDocument string `yaml:"error_document"`
	CDN           bool   `yaml:"cdn"`
}

// DatabaseConfig describes the document database resource.
type DatabaseConfig struct {
	Table       string `yaml:"table" validate:"required"`
	BillingMode string `yaml:"billing_mode" validate:"omitempty,oneof=PAY_PER_REQUEST PROVISIONED"`
}

// DatasetConfig locates the CSV dataset to import.
type DatasetConfig struct {
	Path string `yaml:"path"`
}

// SiteConfig holds the frontend's search endpoint configuration.
type SiteConfig struct {
	SearchURL string `yaml:"search_url" validate:"omitempty,url"`
	SearchKey string `yaml:"search_key"`
}

// ProvisionConfig tunes the readiness poller and retry coordinator.
type ProvisionConfig struct {
	PollInterval Duration    `yaml:"poll_interval"`
	AwaitTimeout Duration    `yaml:"await_timeout"`
	Retry        RetryConfig `yaml:"retry"`
}

// RetryConfig tunes the retry coordinator.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts" validate:"omitempty,min=1"`
	InitialDelay Duration `yaml:"initial_delay"`
	Multiplier   float64  `yaml:"multiplier" validate:"omitempty,gte=1"`
	MaxDelay     Duration `yaml:"max_delay"`
	Jitter       *bool    `yaml:"jitter"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Duration wraps time.Duration so manifest values read as "30s" or "10m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads the manifest at path, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	cfg.applyDefaults()
	if key := os.Getenv(envSearchKey); key != "" {
		cfg.Site.SearchKey = key
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.IndexDocument == "" {
		c.Storage.IndexDocument = "index.html"
	}
	if c.Storage.ErrorDocument == "" {
		c.Storage.ErrorDocument = "error.html"
	}
	if c.Database.BillingMode == "" {
		c.Database.BillingMode = "PAY_PER_REQUEST"
	}
	if c.Dataset.Path == "" {
		c.Dataset.Path = "movies.csv"
	}
	if c.Provision.PollInterval == 0 {
		c.Provision.PollInterval = Duration(provision.DefaultPollInterval)
	}
	if c.Provision.AwaitTimeout == 0 {
		c.Provision.AwaitTimeout = Duration(provision.DefaultAwaitTimeout)
	}
	if c.Provision.Retry.MaxAttempts == 0 {
		c.Provision.Retry.MaxAttempts = provision.DefaultRetryAttempts
	}
	if c.Provision.Retry.InitialDelay == 0 {
		c.Provision.Retry.InitialDelay = Duration(provision.DefaultInitialDelay)
	}
	if c.Provision.Retry.Multiplier == 0 {
		c.Provision.Retry.Multiplier = 2
	}
	if c.Provision.Retry.MaxDelay == 0 {
		c.Provision.Retry.MaxDelay = Duration(provision.DefaultMaxDelay)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Poller builds the readiness poller from the manifest tuning.
func (c *Config) Poller() *provision.Poller {
	return &provision.Poller{
		Interval: c.Provision.PollInterval.Std(),
		Timeout:  c.Provision.AwaitTimeout.Std(),
	}
}

// RetryPolicy builds the retry policy from the manifest tuning.
func (c *Config) RetryPolicy() *provision.RetryPolicy {
	jitter := true
	if c.Provision.Retry.Jitter != nil {
		jitter = *c.Provision.Retry.Jitter
	}
	return &provision.RetryPolicy{
		MaxAttempts:  c.Provision.Retry.MaxAttempts,
		InitialDelay: c.Provision.Retry.InitialDelay.Std(),
		Multiplier:   c.Provision.Retry.Multiplier,
		MaxDelay:     c.Provision.Retry.MaxDelay.Std(),
		Jitter:       jitter,
	}
}

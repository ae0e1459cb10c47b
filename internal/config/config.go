// Package config loads and validates platform configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Store       StoreConfig       `mapstructure:"store"`
	Attachments AttachmentsConfig `mapstructure:"attachments"`
	Publisher   PublisherConfig   `mapstructure:"publisher"`
	Crawl       CrawlConfig       `mapstructure:"crawl"`
	Allowlist   AllowlistConfig   `mapstructure:"allowlist"`
	Approval    ApprovalConfig    `mapstructure:"approval"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port      int  `mapstructure:"port"`
	DemoPages bool `mapstructure:"demo_pages"`
}

// AuthConfig governs token issuance and verification.
type AuthConfig struct {
	Secret        string `mapstructure:"secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Provider string         `mapstructure:"provider"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig controls access to the relational database.
type PostgresConfig struct {
	DSN                string `mapstructure:"dsn"`
	MaxConns           int    `mapstructure:"max_conns"`
	MinConns           int    `mapstructure:"min_conns"`
	MaxConnLifetimeMin int    `mapstructure:"max_conn_lifetime_minutes"`
}

// AttachmentsConfig selects and configures the attachment blob backend.
type AttachmentsConfig struct {
	Provider  string `mapstructure:"provider"`
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PublisherConfig holds metadata for publish-subscribe notifications.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// CrawlConfig governs the scheduled ingestion pipeline.
type CrawlConfig struct {
	IntervalMinutes int    `mapstructure:"interval_minutes"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	UserAgent       string `mapstructure:"user_agent"`
}

// AllowlistConfig tunes source URL validation.
type AllowlistConfig struct {
	AllowLoopback bool `mapstructure:"allow_loopback"`
}

// ApprovalConfig tunes the announcement review flow.
type ApprovalConfig struct {
	StrictSourceCheck bool `mapstructure:"strict_source_check"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CAMPUSFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.demo_pages", false)
	v.SetDefault("auth.token_ttl_hours", 168)
	v.SetDefault("store.provider", "memory")
	v.SetDefault("store.postgres.max_conns", 8)
	v.SetDefault("store.postgres.min_conns", 1)
	v.SetDefault("store.postgres.max_conn_lifetime_minutes", 30)
	v.SetDefault("attachments.provider", "memory")
	v.SetDefault("attachments.prefix", "proofs")
	v.SetDefault("publisher.provider", "noop")
	v.SetDefault("crawl.interval_minutes", 15)
	v.SetDefault("crawl.timeout_seconds", 15)
	v.SetDefault("crawl.user_agent", "campusfolio-bot/0.1")
	v.SetDefault("allowlist.allow_loopback", false)
	v.SetDefault("approval.strict_source_check", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret must be set")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("auth.token_ttl_hours must be > 0")
	}
	switch c.Store.Provider {
	case "memory":
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn must be set when store.provider is postgres")
		}
	default:
		return fmt.Errorf("store.provider must be memory or postgres, got %q", c.Store.Provider)
	}
	switch c.Attachments.Provider {
	case "memory":
	case "local":
		if c.Attachments.LocalDir == "" {
			return fmt.Errorf("attachments.local_dir must be set when attachments.provider is local")
		}
	case "gcs":
		if c.Attachments.GCSBucket == "" {
			return fmt.Errorf("attachments.gcs_bucket must be set when attachments.provider is gcs")
		}
	default:
		return fmt.Errorf("attachments.provider must be memory, local or gcs, got %q", c.Attachments.Provider)
	}
	switch c.Publisher.Provider {
	case "noop", "memory":
	case "pubsub":
		if c.Publisher.ProjectID == "" || c.Publisher.TopicName == "" {
			return fmt.Errorf("publisher.project_id and publisher.topic_name must be set when publisher.provider is pubsub")
		}
	default:
		return fmt.Errorf("publisher.provider must be noop, memory or pubsub, got %q", c.Publisher.Provider)
	}
	if c.Crawl.IntervalMinutes <= 0 {
		return fmt.Errorf("crawl.interval_minutes must be > 0")
	}
	if c.Crawl.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawl.timeout_seconds must be > 0")
	}
	return nil
}

// TokenTTL converts the auth TTL config into a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// CrawlInterval converts the crawl interval config into a duration.
func (c Config) CrawlInterval() time.Duration {
	return time.Duration(c.Crawl.IntervalMinutes) * time.Minute
}

// CrawlTimeout converts the crawl fetch timeout config into a duration.
func (c Config) CrawlTimeout() time.Duration {
	return time.Duration(c.Crawl.TimeoutSeconds) * time.Second
}

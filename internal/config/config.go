// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/openastro/papersync/internal/sync"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Sync      SyncConfig        `mapstructure:"sync"`
	Keywords  sync.KeywordTiers `mapstructure:"keywords"`
	Feed      FeedConfig        `mapstructure:"feed"`
	Store     StoreConfig       `mapstructure:"store"`
	RunLog    RunLogConfig      `mapstructure:"runlog"`
	Notifier  NotifierConfig    `mapstructure:"notifier"`
	Snapshots SnapshotConfig    `mapstructure:"snapshots"`
	Server    ServerConfig      `mapstructure:"server"`
	Auth      AuthConfig        `mapstructure:"auth"`
	Logging   LoggingConfig     `mapstructure:"logging"`
}

// SyncConfig governs one run of the engine.
type SyncConfig struct {
	Categories      []string `mapstructure:"categories"`
	LookbackDays    int      `mapstructure:"lookback_days"`
	MaxArticles     int      `mapstructure:"max_articles"`
	MaxToAdd        int      `mapstructure:"max_to_add"`
	TopN            int      `mapstructure:"top_n"`
	PageSize        int      `mapstructure:"page_size"`
	FeedPageLimit   int      `mapstructure:"feed_page_limit"`
	MaxAuthors      int      `mapstructure:"max_authors"`
	DelaySeconds    int      `mapstructure:"category_delay_seconds"`
	RetryEnabled    bool     `mapstructure:"retry_enabled"`
	IntervalMinutes int      `mapstructure:"interval_minutes"`
}

// FeedConfig controls the upstream feed client.
type FeedConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// StoreConfig selects and configures the destination record store.
type StoreConfig struct {
	Provider string            `mapstructure:"provider"`
	Notion   NotionStoreConfig `mapstructure:"notion"`
}

// NotionStoreConfig holds the Notion binding credentials.
type NotionStoreConfig struct {
	Token          string `mapstructure:"token"`
	DatabaseID     string `mapstructure:"database_id"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	SourceName     string `mapstructure:"source_name"`
}

// RunLogConfig selects the run audit backend.
type RunLogConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// NotifierConfig selects the run report notifier.
type NotifierConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// SnapshotConfig selects where raw feed payloads are archived.
type SnapshotConfig struct {
	Provider  string `mapstructure:"provider"`
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// ServerConfig controls serve-mode HTTP behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAPERSYNC")
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
	v.SetDefault("sync.categories", []string{"astro-ph.CO"})
	v.SetDefault("sync.lookback_days", 7)
	v.SetDefault("sync.max_articles", 20)
	v.SetDefault("sync.max_to_add", 5)
	v.SetDefault("sync.top_n", 3)
	v.SetDefault("sync.page_size", 100)
	v.SetDefault("sync.feed_page_limit", 50)
	v.SetDefault("sync.max_authors", 3)
	v.SetDefault("sync.category_delay_seconds", 3)
	v.SetDefault("sync.retry_enabled", true)
	v.SetDefault("sync.interval_minutes", 60)

	v.SetDefault("keywords.high", []string{"black hole", "gravitational wave", "dark energy"})
	v.SetDefault("keywords.medium", []string{"cosmology", "dark matter", "inflation"})
	v.SetDefault("keywords.low", []string{"galaxy", "supernova", "redshift"})

	v.SetDefault("feed.timeout_seconds", 30)
	v.SetDefault("feed.user_agent", "papersync/1.0 (+https://github.com/openastro/papersync)")

	v.SetDefault("store.provider", "notion")
	v.SetDefault("store.notion.timeout_seconds", 30)
	v.SetDefault("store.notion.source_name", "arXiv")

	v.SetDefault("runlog.provider", "noop")
	v.SetDefault("runlog.table", "sync_runs")
	v.SetDefault("notifier.provider", "noop")
	v.SetDefault("snapshots.provider", "noop")

	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Sync.Categories) == 0 {
		return fmt.Errorf("sync.categories must not be empty")
	}
	if c.Sync.LookbackDays <= 0 {
		return fmt.Errorf("sync.lookback_days must be > 0")
	}
	if c.Sync.MaxArticles <= 0 {
		return fmt.Errorf("sync.max_articles must be > 0")
	}
	if c.Sync.MaxToAdd <= 0 {
		return fmt.Errorf("sync.max_to_add must be > 0")
	}
	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("sync.page_size must be > 0")
	}
	switch c.Store.Provider {
	case "notion":
		if c.Store.Notion.Token == "" || c.Store.Notion.DatabaseID == "" {
			return fmt.Errorf("store.notion.token and store.notion.database_id are required when store.provider is 'notion'")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store provider: %s", c.Store.Provider)
	}
	if c.RunLog.Provider == "postgres" && c.RunLog.DSN == "" {
		return fmt.Errorf("runlog.dsn is required when runlog.provider is 'postgres'")
	}
	if c.Notifier.Provider == "pubsub" && (c.Notifier.ProjectID == "" || c.Notifier.TopicID == "") {
		return fmt.Errorf("notifier.project_id and notifier.topic_id are required when notifier.provider is 'pubsub'")
	}
	if c.Snapshots.Provider == "gcs" && c.Snapshots.GCSBucket == "" {
		return fmt.Errorf("snapshots.gcs_bucket is required when snapshots.provider is 'gcs'")
	}
	if c.Snapshots.Provider == "local" && c.Snapshots.LocalDir == "" {
		return fmt.Errorf("snapshots.local_dir is required when snapshots.provider is 'local'")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// CategoryDelay converts the inter-category delay into a duration.
func (c Config) CategoryDelay() time.Duration {
	return time.Duration(c.Sync.DelaySeconds) * time.Second
}

// SyncInterval is the serve-mode pause between scheduled runs.
func (c Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalMinutes) * time.Minute
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pevans/blogscrape/scraper"
	"gopkg.in/yaml.v3"
)

// SiteSection represents the site settings from the config file. Unset
// fields keep their defaults.
type SiteSection struct {
	URL           string `yaml:"url"`
	ListingPath   string `yaml:"listing_path"`
	MaxArticles   int    `yaml:"max_articles"`
	Delay         string `yaml:"delay"`
	MinTextLength int    `yaml:"min_text_length"`
	DiscoveryMode string `yaml:"discovery_mode"`
	FeedPath      string `yaml:"feed_path"`
	UserAgent     string `yaml:"user_agent"`
	Timeout       string `yaml:"timeout"`
}

// StorageSection represents storage configuration from config file.
type StorageSection struct {
	Output string `yaml:"output"`
	DSN    string `yaml:"dsn"`
}

// PublishSection represents the article backend settings.
type PublishSection struct {
	BackendURL string `yaml:"backend_url"`
}

// FileConfig represents the structure of ~/.blogscrape/config.yaml.
type FileConfig struct {
	Site    SiteSection    `yaml:"site"`
	Storage StorageSection `yaml:"storage"`
	Publish PublishSection `yaml:"publish"`
}

// DefaultConfigPath returns ~/.blogscrape/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".blogscrape", "config.yaml"), nil
}

// LoadConfigFile loads configuration from configPath, or from
// ~/.blogscrape/config.yaml when configPath is empty. Returns nil if the file
// doesn't exist (not an error). Returns error if the file exists but cannot
// be parsed.
func LoadConfigFile(configPath string) (*FileConfig, error) {
	if configPath == "" {
		var err error
		configPath, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Apply overlays the fields set in the file onto cfg.
func (f *FileConfig) Apply(cfg *scraper.SiteConfig) error {
	site := f.Site

	if site.URL != "" {
		cfg.SiteURL = site.URL
	}
	if site.ListingPath != "" {
		cfg.ListingPath = site.ListingPath
	}
	if site.MaxArticles != 0 {
		cfg.MaxArticles = site.MaxArticles
	}
	if site.MinTextLength != 0 {
		cfg.MinTextLength = site.MinTextLength
	}
	if site.DiscoveryMode != "" {
		cfg.DiscoveryMode = site.DiscoveryMode
	}
	if site.FeedPath != "" {
		cfg.FeedPath = site.FeedPath
	}
	if site.UserAgent != "" {
		cfg.UserAgent = site.UserAgent
	}
	if site.Delay != "" {
		d, err := time.ParseDuration(site.Delay)
		if err != nil {
			return fmt.Errorf("invalid site.delay %q: %w", site.Delay, err)
		}
		cfg.Delay = d
	}
	if site.Timeout != "" {
		d, err := time.ParseDuration(site.Timeout)
		if err != nil {
			return fmt.Errorf("invalid site.timeout %q: %w", site.Timeout, err)
		}
		cfg.Timeout = d
	}
	if f.Storage.Output != "" {
		cfg.OutputPath = f.Storage.Output
	}

	return nil
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meshhq/ghcrawler/processor"
	"github.com/meshhq/ghcrawler/queue"
	"github.com/meshhq/ghcrawler/store"
)

// CLIConfig is the top-level YAML configuration file, embedding each
// package's own Config.
type CLIConfig struct {
	Processor processor.Config `yaml:"processor"`
	Queue     queue.Config     `yaml:"queue"`
	Store     store.Config     `yaml:"store"`

	// Tokens is the set of GitHub personal access tokens the fetcher's
	// TokenPool round-robins across. A single empty entry fetches
	// unauthenticated (heavily rate-limited).
	Tokens []string `yaml:"tokens"`

	// UserAgent is sent on every GitHub API request (GitHub requires one).
	UserAgent string `yaml:"user_agent"`

	// DashboardAddr is the address the read-only status server listens on,
	// e.g. ":8081". Empty disables the dashboard.
	DashboardAddr string `yaml:"dashboard_addr"`

	// Seeds is the set of starting URLs enqueued on boot, e.g.
	// "https://api.github.com/orgs/acme".
	Seeds []string `yaml:"seeds"`
}

func (c *CLIConfig) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "ghcrawler"
	}
	c.Queue = c.Queue.Defaults()
	c.Store = c.Store.Defaults()
}

// loadConfig reads and decodes a YAML config file at path.
func loadConfig(path string) (*CLIConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var cfg CLIConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.defaults()
	return &cfg, nil
}

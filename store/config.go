package store

import "time"

// Config selects and configures the document Store for the CLI.
type Config struct {
	// SQLitePath is the database file OpenSQLiteStore opens. Defaults to
	// "ghcrawler.db".
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`

	// RedisURL, if set, wraps the SQLite store in a RedisEtagCache
	// fast-path (e.g. "redis://localhost:6379/0").
	RedisURL string `json:"redis_url" yaml:"redis_url"`

	// RedisTTL is how long a cached etag is trusted before falling back to
	// SQLite. Defaults to 24h.
	RedisTTL time.Duration `json:"redis_ttl" yaml:"redis_ttl"`
}

func (c *Config) defaults() {
	if c.SQLitePath == "" {
		c.SQLitePath = "ghcrawler.db"
	}
	if c.RedisTTL <= 0 {
		c.RedisTTL = 24 * time.Hour
	}
}

// Defaults applies zero-value defaults and returns the receiver, for use at
// the CLI boundary right after YAML decoding.
func (c Config) Defaults() Config {
	c.defaults()
	return c
}

package store

import "context"

// Build opens the SQLite-backed Store cfg names, wrapping it in a
// RedisEtagCache when cfg.RedisURL is set.
func Build(ctx context.Context, cfg Config) (Store, error) {
	cfg = cfg.Defaults()

	sqlite, err := OpenSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if cfg.RedisURL == "" {
		return sqlite, nil
	}
	return NewRedisEtagCache(ctx, cfg.RedisURL, sqlite, cfg.RedisTTL)
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/meshhq/ghcrawler/processor"
)

// SQLiteStore persists documents keyed by URN, with a secondary URL index
// so etag lookups (which key by fetch URL) stay cheap.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens dbPath, applies the WAL/busy-timeout pragma set,
// and ensures the documents schema exists.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			urn TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			type TEXT NOT NULL,
			etag TEXT,
			body BLOB,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url);
		CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(type);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Etag implements processor.Store by URL lookup; event discovery checks
// etags by event URL, not URN.
func (s *SQLiteStore) Etag(ctx context.Context, _ processor.ElementType, url string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT etag FROM documents WHERE url = ?`, url)
	var etag sql.NullString
	if err := row.Scan(&etag); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite store: etag lookup: %w", err)
	}
	return etag.String, true, nil
}

// Get reads a stored document by URN.
func (s *SQLiteStore) Get(ctx context.Context, urn processor.URN) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE urn = ?`, string(urn))
	var body []byte
	if err := row.Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite store: get: %w", err)
	}
	return body, true, nil
}

// Put upserts a document, keyed by URN, retrying on SQLITE_BUSY.
func (s *SQLiteStore) Put(ctx context.Context, doc Document) error {
	const maxRetries = 3
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO documents (urn, url, type, etag, body, updated_at)
			VALUES (?, ?, ?, ?, ?, strftime('%s','now'))
			ON CONFLICT(urn) DO UPDATE SET
				url = excluded.url, type = excluded.type,
				etag = excluded.etag, body = excluded.body, updated_at = excluded.updated_at
		`, string(doc.URN), doc.URL, string(doc.Type), doc.Etag, doc.Body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !strings.Contains(err.Error(), "database is locked") {
			break
		}
	}
	return fmt.Errorf("sqlite store: put: %w", lastErr)
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error { return s.db.Close() }

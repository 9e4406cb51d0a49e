// Package sqlite implements the durable local stores on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas applied to every connection. busy_timeout lets the reader wait out
// a writer's transaction instead of failing.
var pragmas = []string{
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
	"cache_size(-8000)",
}

// DB provides dual reader/writer database connections.
// The writer is limited to a single connection so read-and-clear
// transactions on the relay never interleave. The reader pool allows up to 4
// concurrent readers.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens a file-backed database in WAL mode.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	return openDB(ctx, dbPath, fileDSN(dbPath))
}

// fileDSN builds the DSN of an on-disk database.
func fileDSN(path string) string {
	return "file:" + path + "?" + pragmaQuery(append([]string{"journal_mode(WAL)"}, pragmas...))
}

// memoryDSN builds the DSN of a named in-memory database shared by every
// connection that uses the same name. WAL does not apply to memory databases.
func memoryDSN(name string) string {
	return "file:" + url.PathEscape(name) + "?mode=memory&cache=shared&" + pragmaQuery(pragmas)
}

func pragmaQuery(list []string) string {
	parts := make([]string, 0, len(list))
	for _, p := range list {
		parts = append(parts, "_pragma="+p)
	}
	return strings.Join(parts, "&")
}

func openDB(ctx context.Context, path, dsn string) (*DB, error) {
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.PingContext(ctx); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.PingContext(ctx); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   path,
	}, nil
}

// Path returns the location the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Close closes both reader and writer connections. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

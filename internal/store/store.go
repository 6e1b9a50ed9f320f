package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported dialects. The dialect drives placeholder rebinding, the insert
// id strategy, and the DDL flavor in migrations.go.
const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
	dialectMySQL    = "mysql"
)

// Store persists locations and API keys in a relational database. The
// backend is chosen from the connection string: postgres:// and mysql://
// URLs select their drivers, anything else (including the empty string)
// falls back to an embedded SQLite file under dataDir.
type Store struct {
	db      *sqlx.DB
	dialect string
}

// Open connects to the database named by databaseURL and runs migrations.
// An empty databaseURL with an empty dataDir opens an in-memory SQLite
// store, used by tests and ad-hoc tooling.
func Open(databaseURL, dataDir string) (*Store, error) {
	driver, dsn, err := resolveDSN(databaseURL, dataDir)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	dialect := driver
	if driver == "pgx" {
		dialect = dialectPostgres
	}
	if dialect == dialectSQLite {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func resolveDSN(databaseURL, dataDir string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"):
		return "pgx", databaseURL, nil

	case strings.HasPrefix(databaseURL, "mysql://"):
		// go-sql-driver takes a bare DSN (user:pass@tcp(host)/db), not a URL.
		return "mysql", strings.TrimPrefix(databaseURL, "mysql://") + "?parseTime=true", nil

	case strings.HasPrefix(databaseURL, "sqlite://"):
		return "sqlite", strings.TrimPrefix(databaseURL, "sqlite://"), nil

	case databaseURL != "":
		return "", "", fmt.Errorf("unsupported database url %q", databaseURL)

	case dataDir == "":
		return "sqlite", ":memory:?_journal_mode=WAL", nil

	default:
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return "", "", fmt.Errorf("create data dir: %w", err)
		}
		dsn := filepath.Join(dataDir, "waymark.db") + "?_journal_mode=WAL&_busy_timeout=5000"
		return "sqlite", dsn, nil
	}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// HashKey returns the hex-encoded SHA-256 hash of a raw API key string.
// Only this hash is ever persisted.
func HashKey(rawKey string) string {
	h := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(h[:])
}

package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/waymark-io/waymark/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from the --data-dir flag,
// WAYMARK_DATA_DIR env var, or ~/.waymark as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("WAYMARK_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.waymark"
}

// openStore opens the location store named by database.url (DATABASE_URL),
// falling back to the SQLite file under the data dir.
func openStore() (*store.Store, error) {
	return store.Open(viper.GetString("database.url"), resolveDataDir())
}

// discardLogger returns a logger for CLI paths where structured log output
// would clutter the terminal.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database used to cache feeds, items, users and item pages.
type DB struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or opens the SQLite cache database and runs migrations.
func Open(path string, log zerolog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{db: db, log: log.With().Str("component", "cache").Logger()}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		by_user TEXT,
		time_unix INTEGER,
		text TEXT,
		parent_id INTEGER,
		url TEXT,
		title TEXT,
		score INTEGER DEFAULT 0,
		descendants INTEGER DEFAULT 0,
		kids TEXT,
		dead INTEGER DEFAULT 0,
		deleted INTEGER DEFAULT 0,
		fetched_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS story_lists (
		list_type TEXT PRIMARY KEY,
		item_ids TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created INTEGER,
		karma INTEGER,
		about TEXT,
		fetched_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comment_pages (
		story_id INTEGER PRIMARY KEY,
		page TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_fetched ON items(fetched_at)`,
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			return fmt.Errorf("recording schema version %d: %w", i+1, err)
		}
	}
	return nil
}

// Prune deletes cached items, pages and users fetched before now-maxAge and
// reports how many rows went. Story lists are small and always kept.
func (d *DB) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	var total int64
	for _, table := range []string{"items", "comment_pages", "users"} {
		res, err := d.db.Exec(`DELETE FROM `+table+` WHERE fetched_at < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("pruning %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if total > 0 {
		d.log.Debug().Int64("rows", total).Msg("pruned cache")
	}
	return total, nil
}

package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/xscout/xscout/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists leads and the activity log in a SQLite database. A nil
// *Store is a valid "unconfigured" store: every operation is a no-op that
// returns an empty or false result, so the scan pipeline can run without
// persistence rather than failing at startup.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database in dataDir and applies pending
// migrations. Pass ":memory:" as dataDir for an in-memory database
// (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "xscout.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection avoids "database is locked" errors; the busy
	// timeout makes concurrent access wait briefly instead of failing.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

// Exists reports whether a lead with the given post ID is already stored.
// Query failures are logged and treated as "not seen" so the scan loop
// keeps going.
func (s *Store) Exists(postID string) bool {
	if s == nil || s.db == nil {
		return false
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM leads WHERE post_id = ?", postID).Scan(&count); err != nil {
		logrus.Errorf("Lead existence check failed for %s: %v", postID, err)
		return false
	}
	return count > 0
}

// Insert stores a new lead. It returns false when a lead with the same
// post ID already exists (the insert is a no-op) or when the write fails.
// Uniqueness is enforced by the post_id primary key, so concurrent
// inserts of the same post cannot both succeed.
func (s *Store) Insert(lead *models.Lead) bool {
	if s == nil || s.db == nil {
		return false
	}

	detectedAt := lead.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(`
		INSERT INTO leads (post_id, platform, username, profile_url, post_text, posted_at,
			matched_keyword, intent_score, intent_label, contact_info, notified, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(post_id) DO NOTHING`,
		lead.PostID, lead.Platform, lead.Username, lead.ProfileURL, lead.PostText,
		lead.Timestamp.UTC().Format(time.RFC3339),
		lead.MatchedKeyword, lead.IntentScore, lead.IntentLabel, lead.ContactInfo,
		detectedAt.Format(time.RFC3339),
	)
	if err != nil {
		logrus.Errorf("Lead insert failed for %s: %v", lead.PostID, err)
		s.AppendLog("ERROR", fmt.Sprintf("Insert failed for %s: %v", lead.PostID, err))
		return false
	}

	n, err := res.RowsAffected()
	if err != nil {
		logrus.Errorf("Lead insert result unavailable for %s: %v", lead.PostID, err)
		return false
	}
	return n == 1
}

// MarkNotified sets the notified flag for a lead. Missing leads and write
// failures are logged, not surfaced.
func (s *Store) MarkNotified(postID string) {
	if s == nil || s.db == nil {
		return
	}

	if _, err := s.db.Exec("UPDATE leads SET notified = 1 WHERE post_id = ?", postID); err != nil {
		logrus.Errorf("Failed to mark lead %s notified: %v", postID, err)
		s.AppendLog("ERROR", fmt.Sprintf("Mark notified failed for %s: %v", postID, err))
	}
}

// AppendLog records one activity log entry. Logging is advisory: failures
// are swallowed.
func (s *Store) AppendLog(level, message string) {
	if s == nil || s.db == nil {
		return
	}

	_, err := s.db.Exec("INSERT INTO logs (level, message, created_at) VALUES (?, ?, ?)",
		level, message, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		logrus.Debugf("Activity log append failed: %v", err)
	}
}

// LeadFilter narrows the result of Leads. Zero values mean "no filter";
// a Limit of 0 applies a default of 100.
type LeadFilter struct {
	Platform string
	Label    string
	Limit    int
}

// Leads returns stored leads ordered by detection time, newest first.
func (s *Store) Leads(filter LeadFilter) ([]models.Lead, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `SELECT post_id, platform, username, profile_url, post_text, posted_at,
		matched_keyword, intent_score, intent_label, contact_info, notified, detected_at
		FROM leads`
	var conds []string
	var args []any

	if filter.Platform != "" {
		conds = append(conds, "platform = ?")
		args = append(args, filter.Platform)
	}
	if filter.Label != "" {
		conds = append(conds, "intent_label = ?")
		args = append(args, filter.Label)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY detected_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var l models.Lead
		var postedAt, detectedAt string
		var notified int
		if err := rows.Scan(&l.PostID, &l.Platform, &l.Username, &l.ProfileURL, &l.PostText, &postedAt,
			&l.MatchedKeyword, &l.IntentScore, &l.IntentLabel, &l.ContactInfo, &notified, &detectedAt); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		l.Notified = notified == 1
		if t, err := time.Parse(time.RFC3339, postedAt); err == nil {
			l.Timestamp = t
		}
		if t, err := time.Parse(time.RFC3339, detectedAt); err == nil {
			l.DetectedAt = t
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// Logs returns the most recent activity log entries, newest first.
func (s *Store) Logs(limit int) ([]models.LogEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query("SELECT level, message, created_at FROM logs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		var createdAt string
		if err := rows.Scan(&e.Level, &e.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

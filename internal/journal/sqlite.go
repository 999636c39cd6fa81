package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteJournal stores each exchange as one row. Every Record is its own
// INSERT, so a crash can only lose the row being written.
type SQLiteJournal struct {
	mu    sync.Mutex
	db    *sql.DB
	clock *clock
}

// NewSQLiteJournal opens (or creates) a SQLite database at the given path.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &SQLiteJournal{db: db, clock: newClock()}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) migrate() error {
	for _, stmt := range migrations {
		if _, err := j.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (j *SQLiteJournal) Record(ctx context.Context, userID, userMessage, botReply string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	ts := j.clock.stamp()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO interactions (timestamp, user_id, user_message, bot_reply) VALUES (?, ?, ?, ?)`,
		ts.Format(TimeFormat), userID, userMessage, botReply,
	)
	if err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

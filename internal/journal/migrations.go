package journal

// migrations is the ordered list of SQL migration statements.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		user_id TEXT NOT NULL,
		user_message TEXT NOT NULL,
		bot_reply TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user_id ON interactions(user_id, id)`,
	// committed rows are immutable
	`CREATE TRIGGER IF NOT EXISTS interactions_no_update
		BEFORE UPDATE ON interactions
		BEGIN SELECT RAISE(ABORT, 'interactions are append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS interactions_no_delete
		BEFORE DELETE ON interactions
		BEGIN SELECT RAISE(ABORT, 'interactions are append-only'); END`,
}

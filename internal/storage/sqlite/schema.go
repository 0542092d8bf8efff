// ABOUTME: SQLite schema for the append-only interaction log
// ABOUTME: One row per LogRecord; rows are never updated by Clara
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
CREATE TABLE IF NOT EXISTS interactions (
    id TEXT PRIMARY KEY,
    logged_at TEXT NOT NULL,
    user_hash TEXT NOT NULL,
    user_length INTEGER NOT NULL,
    ai_length INTEGER NOT NULL,
    model TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_logged_at ON interactions(logged_at);
CREATE INDEX IF NOT EXISTS idx_interactions_user_hash ON interactions(user_hash);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1

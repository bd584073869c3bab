package store

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session TEXT NOT NULL,
    path TEXT NOT NULL,
    op TEXT NOT NULL,
    mod_time TIMESTAMP,
    recorded_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS watches (
    path TEXT PRIMARY KEY,
    mode TEXT NOT NULL,
    added_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_session ON events(session);
CREATE INDEX IF NOT EXISTS idx_events_path ON events(path);
CREATE INDEX IF NOT EXISTS idx_events_recorded ON events(recorded_at);
`

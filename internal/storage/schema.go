package storage

const schema = `
-- The 'kv' table holds every persisted progress key as a string value.
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
`

package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Snapshots: latest extraction result per watched URL. One row per URL,
-- overwritten on each re-extraction (last-writer-wins).
CREATE TABLE IF NOT EXISTS snapshots (
    url TEXT PRIMARY KEY,
    captured_at TIMESTAMP NOT NULL,
    page_type TEXT NOT NULL,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_captured ON snapshots(captured_at);

-- Conversations: capped chat history, most recent first by updated_at.
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    preview TEXT NOT NULL,
    messages TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at DESC);

-- Scratch key-value state: lastUpdated marker, userInput hand-off value,
-- and similar single-slot values.
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

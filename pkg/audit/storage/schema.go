package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the audit tables.
const Schema = `
CREATE TABLE IF NOT EXISTS relay_audit (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,

    turns INTEGER NOT NULL,
    fragments INTEGER NOT NULL,
    events INTEGER NOT NULL,
    skipped INTEGER NOT NULL,

    outcome TEXT NOT NULL,
    error TEXT,
    error_kind TEXT,

    -- unix nanoseconds
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    first_fragment_ns INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relay_audit_started_at ON relay_audit(started_at);
CREATE INDEX IF NOT EXISTS idx_relay_audit_outcome ON relay_audit(outcome);
CREATE INDEX IF NOT EXISTS idx_relay_audit_request_id ON relay_audit(request_id);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at) VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;`

const insertRecord = `
INSERT INTO relay_audit (
    id, request_id, provider, model,
    turns, fragments, events, skipped,
    outcome, error, error_kind,
    started_at, duration_ns, first_fragment_ns
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const selectColumns = `
SELECT id, request_id, provider, model,
       turns, fragments, events, skipped,
       outcome, COALESCE(error, ''), COALESCE(error_kind, ''),
       started_at, duration_ns, first_fragment_ns
FROM relay_audit`

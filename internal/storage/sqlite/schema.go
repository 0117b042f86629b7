package sqlite

const schema = `
-- Projects table (minimal record; project CRUD lives outside this engine)
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    repo_url TEXT NOT NULL DEFAULT '',
    owner_id TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);

-- Tracked script files
CREATE TABLE IF NOT EXISTS script_files (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    repo_id TEXT,
    file_path TEXT NOT NULL,
    file_name TEXT NOT NULL,
    file_kind TEXT NOT NULL,
    content_hash TEXT NOT NULL DEFAULT '',
    fingerprint TEXT NOT NULL DEFAULT '{}',
    size_bytes INTEGER NOT NULL DEFAULT 0,
    last_modified DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(project_id, file_path),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_script_files_kind ON script_files(file_kind);
CREATE INDEX IF NOT EXISTS idx_script_files_project ON script_files(project_id);

-- Duplicate alerts. File references are non-owning: deleting an alert never
-- touches files, and file deletion cascades the alert away.
CREATE TABLE IF NOT EXISTS duplicate_alerts (
    id TEXT PRIMARY KEY,
    alert_kind TEXT NOT NULL DEFAULT 'similar_script',
    similarity_score REAL NOT NULL CHECK(similarity_score >= 0.0 AND similarity_score <= 1.0),
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'dismissed', 'merged')),
    subject_file_id TEXT NOT NULL,
    similar_file_id TEXT NOT NULL,
    user_id TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at DATETIME,
    FOREIGN KEY (subject_file_id) REFERENCES script_files(id) ON DELETE CASCADE,
    FOREIGN KEY (similar_file_id) REFERENCES script_files(id) ON DELETE CASCADE
);

-- At most one pending alert per unordered file pair. The expression index
-- canonicalizes the pair so (A,B) and (B,A) collide, which also serializes
-- concurrent writers racing to alert on the same pair.
CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_pending_pair
    ON duplicate_alerts(MIN(subject_file_id, similar_file_id), MAX(subject_file_id, similar_file_id))
    WHERE status = 'pending';

CREATE INDEX IF NOT EXISTS idx_alerts_status ON duplicate_alerts(status);
CREATE INDEX IF NOT EXISTS idx_alerts_user ON duplicate_alerts(user_id);

-- In-app notifications written when an alert fires
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL DEFAULT 'duplicate',
    is_read INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);

-- Config table for engine settings
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

package store

// Schema v1 - volumes, files, moves, and the audit snapshot trail.
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Volumes probed by the free-space probe, persisted between
-- inventory/plan/apply invocations so a plan run does not require a
-- live re-probe.
CREATE TABLE IF NOT EXISTS volumes (
  path TEXT PRIMARY KEY,
  total_bytes INTEGER NOT NULL,
  free_bytes INTEGER NOT NULL,
  probed_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Files discovered by the inventory scanner.
CREATE TABLE IF NOT EXISTS files (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  absolute_path TEXT UNIQUE NOT NULL,
  relative_path TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  source_volume TEXT NOT NULL REFERENCES volumes(path) ON DELETE CASCADE,
  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_files_source_volume ON files(source_volume);
CREATE INDEX IF NOT EXISTS idx_files_relative_path ON files(relative_path);

-- The most recently materialized plan's moves, one row per FileMove.
CREATE TABLE IF NOT EXISTS moves (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  absolute_path TEXT NOT NULL,
  target_volume TEXT,
  status TEXT NOT NULL,
  reason TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_moves_status ON moves(status);
CREATE INDEX IF NOT EXISTS idx_moves_target_volume ON moves(target_volume);

-- The ordered audit trail of WorldView snapshots from the most recent
-- plan command run, stored verbatim as JSON.
CREATE TABLE IF NOT EXISTS snapshots (
  step INTEGER PRIMARY KEY,
  action TEXT NOT NULL,
  world_json TEXT NOT NULL,
  metadata_json TEXT
);
`

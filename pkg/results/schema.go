package results

// Schema is the SQLite schema, applied idempotently on open.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    dataset_rows INTEGER NOT NULL,
    converged   INTEGER NOT NULL DEFAULT 1,
    iterations  INTEGER NOT NULL DEFAULT 0,
    corrected   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS estimates (
    run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    parameter TEXT NOT NULL,
    estimate  REAL NOT NULL,
    stderr    REAL NOT NULL,
    PRIMARY KEY (run_id, parameter)
);

CREATE TABLE IF NOT EXISTS draws (
    run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    chain     INTEGER NOT NULL,
    iteration INTEGER NOT NULL,
    parameter TEXT NOT NULL,
    value     REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_draws_run_param ON draws(run_id, parameter);
`

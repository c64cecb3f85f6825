package postgres

import "context"

// Schema is the DDL for the payment core tables. Applied by tests and by
// deployments that do not manage migrations externally.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id             UUID PRIMARY KEY,
    user_id        TEXT NOT NULL,
    amount_cents   BIGINT NOT NULL,
    currency       TEXT NOT NULL,
    status         TEXT NOT NULL,
    tx_type        TEXT NOT NULL,
    payment_method TEXT NOT NULL DEFAULT '',
    description    TEXT NOT NULL DEFAULT '',
    reference_id   TEXT,
    metadata       JSONB,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS wallets (
    user_id           TEXT PRIMARY KEY,
    available_balance BIGINT NOT NULL DEFAULT 0,
    pending_balance   BIGINT NOT NULL DEFAULT 0,
    currency          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS idempotency_keys (
    key         TEXT PRIMARY KEY,
    operation   TEXT NOT NULL,
    status      TEXT NOT NULL,
    result      JSONB,
    reserved_at TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS audit_log (
    id         UUID PRIMARY KEY,
    ts         TIMESTAMPTZ NOT NULL,
    action     TEXT NOT NULL,
    user_id    TEXT NOT NULL,
    amount_cents BIGINT NOT NULL,
    status     TEXT NOT NULL,
    metadata   JSONB
);
CREATE INDEX IF NOT EXISTS idx_audit_log_user_ts ON audit_log (user_id, ts);
`

// ApplySchema creates the tables if they do not exist.
func (db *DB) ApplySchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, Schema)
	return err
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowpay/paycore/internal/core/domain"
)

type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_log (id, ts, action, user_id, amount_cents, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Pool.Exec(ctx, query, id, ts, entry.Action, entry.UserID, entry.Amount, entry.Status, metadata)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, ts, action, user_id, amount_cents, status, metadata
		FROM audit_log
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR action = $2)
		  AND ($3::timestamptz IS NULL OR ts >= $3)
		  AND ($4::timestamptz IS NULL OR ts <= $4)
		ORDER BY ts ASC
	`

	var start, end *time.Time
	if !filter.Start.IsZero() {
		start = &filter.Start
	}
	if !filter.End.IsZero() {
		end = &filter.End
	}

	rows, err := r.db.Pool.Query(ctx, query, filter.UserID, string(filter.Action), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var out []*domain.AuditEntry
	for rows.Next() {
		var (
			e        domain.AuditEntry
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.UserID, &e.Amount, &e.Status, &metadata); err != nil {
			return nil, err
		}
		if metadata != nil {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

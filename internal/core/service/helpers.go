package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/flowpay/paycore/internal/core/ports"
	"github.com/flowpay/paycore/internal/metrics"
)

// replayOrReserve implements the idempotency skeleton shared by every
// operation. It returns (result, true) when a completed result exists for
// key, in which case the caller must return it verbatim without executing
// the side effect. Returning (nil, false) means the caller now holds the
// reservation and must either complete or release it.
//
// Callers losing the check-and-reserve race poll until the winner locks in
// its result, so concurrent duplicates observe the same response while only
// one underlying operation executes.
func (s *PaymentService) replayOrReserve(ctx context.Context, key, operation string) (json.RawMessage, bool, error) {
	if err := domain.ValidateIdempotencyKey(key); err != nil {
		return nil, false, err
	}

	rec, found, err := s.idempotency.Check(ctx, key)
	if err != nil {
		// Lookups never abort the operation; proceed to Reserve which will
		// arbitrate anyway.
		s.logger.Warn("idempotency check failed", "key", key, "error", err)
	}
	if found && rec.IsComplete() {
		metrics.IdempotencyHits.WithLabelValues(operation).Inc()
		return rec.Result, true, nil
	}

	if err := s.idempotency.Reserve(ctx, key, operation); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeDuplicateKey) {
			result, pollErr := s.pollForResult(ctx, key)
			if pollErr != nil {
				return nil, false, pollErr
			}
			metrics.IdempotencyHits.WithLabelValues(operation).Inc()
			return result, true, nil
		}
		return nil, false, err
	}
	return nil, false, nil
}

func (s *PaymentService) pollForResult(ctx context.Context, key string) (json.RawMessage, error) {
	ticker := time.NewTicker(resultPollInterval)
	defer ticker.Stop()

	timeout := time.After(resultPollTimeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, NewRequestInProgressError(key)
		case <-ticker.C:
			rec, found, err := s.idempotency.Check(ctx, key)
			if err != nil {
				continue
			}
			if !found {
				// The holder released the key after a transient failure;
				// tell the caller to retry rather than silently re-running
				// the side effect under a reservation it never took.
				return nil, NewRequestInProgressError(key)
			}
			if rec.IsComplete() {
				return rec.Result, nil
			}
		}
	}
}

// completeIdempotent locks in the first computed result for key. A key is
// only locked in on a terminal outcome; storage failures here are logged but
// do not fail the already-performed operation.
func (s *PaymentService) completeIdempotent(ctx context.Context, key string, result any) json.RawMessage {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("marshal idempotent result", "key", key, "error", err)
		return nil
	}
	if err := s.idempotency.Complete(ctx, key, payload, s.ResultTTL); err != nil {
		s.logger.Error("store idempotent result", "key", key, "error", err)
	}
	return payload
}

// releaseKey drops a reservation after a failure so a legitimate retry with
// the same key may proceed.
func (s *PaymentService) releaseKey(ctx context.Context, key string) {
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Error("release idempotency key", "key", key, "error", err)
	}
}

// audit appends one entry to the trail. Append failures are counted and
// logged but never abort the financial operation in flight.
func (s *PaymentService) audit(ctx context.Context, action domain.AuditAction, userID string, amount int64, status string, metadata map[string]string) {
	entry := &domain.AuditEntry{
		Timestamp: time.Now(),
		Action:    action,
		UserID:    userID,
		Amount:    amount,
		Status:    status,
		Metadata:  metadata,
	}
	if err := s.auditLog.Append(ctx, entry); err != nil {
		metrics.AuditDropped.Inc()
		s.logger.Error("audit append failed", "action", action, "user_id", userID, "error", err)
	}
}

// alertFatal notifies the alerting collaborator without blocking the caller.
// Delivery failure never affects the financial outcome.
func (s *PaymentService) alertFatal(operation, message string, details map[string]string) {
	if s.alerter == nil {
		return
	}
	alert := ports.Alert{
		Severity:  ports.SeverityFatal,
		Operation: operation,
		Message:   message,
		Details:   details,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.alerter.Notify(ctx, alert); err != nil {
			s.logger.Warn("alert delivery failed", "operation", operation, "error", err)
		}
	}()
}

package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flowpay/paycore/internal/core/domain"
)

func TestValidateIdempotencyKey(t *testing.T) {
	assert.NoError(t, domain.ValidateIdempotencyKey("idem-123"))
	assert.NoError(t, domain.ValidateIdempotencyKey(strings.Repeat("k", domain.MaxIdempotencyKeyLength)))

	err := domain.ValidateIdempotencyKey("")
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidIdempotencyKey))

	err = domain.ValidateIdempotencyKey(strings.Repeat("k", domain.MaxIdempotencyKeyLength+1))
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidIdempotencyKey))
}

func TestIdempotencyRecordExpiry(t *testing.T) {
	now := time.Now()

	t.Run("completed record lives until ExpiresAt", func(t *testing.T) {
		rec := &domain.IdempotencyRecord{
			Status:    domain.IdempotencyCompleted,
			ExpiresAt: now.Add(time.Hour),
		}
		assert.False(t, rec.IsExpired(now))
		assert.True(t, rec.IsExpired(now.Add(2*time.Hour)))
	})

	t.Run("reservation goes stale after the takeover window", func(t *testing.T) {
		rec := &domain.IdempotencyRecord{
			Status:     domain.IdempotencyReserved,
			ReservedAt: now,
		}
		assert.False(t, rec.IsExpired(now.Add(time.Minute)))
		assert.True(t, rec.IsExpired(now.Add(domain.ReservationStaleAfter+time.Second)))
	})
}

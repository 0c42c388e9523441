package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuotation(t *testing.T, validFor time.Duration) *Quotation {
	t.Helper()
	now := time.Now()
	q, err := NewQuotation(
		uuid.New(), "QT2026-00001", uuid.New(), uuid.New(), "Acme Ltd",
		catalog.TaxModeExclusive, decimal.NewFromInt(15),
		[]ItemSnapshot{snapshot(100, 2)}, decimal.Zero,
		now, now.Add(validFor), uuid.New(),
	)
	require.NoError(t, err)
	return q
}

func TestNewQuotation(t *testing.T) {
	q := newTestQuotation(t, 14*24*time.Hour)
	assert.Equal(t, QuotationStatusDraft, q.Status)
	assert.True(t, q.Total.Equal(decimal.NewFromInt(230)), "total=%s", q.Total)

	t.Run("expiry must follow quotation date", func(t *testing.T) {
		now := time.Now()
		_, err := NewQuotation(
			uuid.New(), "QT2026-00002", uuid.New(), uuid.New(), "Acme Ltd",
			catalog.TaxModeExclusive, decimal.NewFromInt(15),
			[]ItemSnapshot{snapshot(100, 1)}, decimal.Zero,
			now, now.Add(-time.Hour), uuid.New(),
		)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestQuotation_Send(t *testing.T) {
	q := newTestQuotation(t, time.Hour)
	require.NoError(t, q.Send())
	assert.Equal(t, QuotationStatusSent, q.Status)
	assert.NotNil(t, q.SentAt)

	err := q.Send()
	assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
}

func TestQuotation_ExpireIfPast(t *testing.T) {
	t.Run("sent quotation expires lazily", func(t *testing.T) {
		q := newTestQuotation(t, time.Hour)
		require.NoError(t, q.Send())

		assert.False(t, q.ExpireIfPast(time.Now()))
		assert.Equal(t, QuotationStatusSent, q.Status)

		assert.True(t, q.ExpireIfPast(time.Now().Add(2*time.Hour)))
		assert.Equal(t, QuotationStatusExpired, q.Status)

		// Second call is a no-op.
		assert.False(t, q.ExpireIfPast(time.Now().Add(3*time.Hour)))
	})

	t.Run("draft never expires", func(t *testing.T) {
		q := newTestQuotation(t, time.Hour)
		assert.False(t, q.ExpireIfPast(time.Now().Add(2*time.Hour)))
		assert.Equal(t, QuotationStatusDraft, q.Status)
	})
}

func TestQuotation_MarkAccepted(t *testing.T) {
	t.Run("links the converted sale", func(t *testing.T) {
		q := newTestQuotation(t, time.Hour)
		require.NoError(t, q.Send())

		saleID := uuid.New()
		require.NoError(t, q.MarkAccepted(saleID, time.Now()))
		assert.Equal(t, QuotationStatusAccepted, q.Status)
		require.NotNil(t, q.ConvertedSaleID)
		assert.Equal(t, saleID, *q.ConvertedSaleID)
	})

	t.Run("expired quotation cannot be accepted", func(t *testing.T) {
		q := newTestQuotation(t, time.Hour)
		require.NoError(t, q.Send())

		err := q.MarkAccepted(uuid.New(), time.Now().Add(2*time.Hour))
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
		assert.Equal(t, QuotationStatusExpired, q.Status)
	})

	t.Run("draft cannot be accepted", func(t *testing.T) {
		q := newTestQuotation(t, time.Hour)
		err := q.MarkAccepted(uuid.New(), time.Now())
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestQuotation_Reject(t *testing.T) {
	q := newTestQuotation(t, time.Hour)
	require.NoError(t, q.Send())
	require.NoError(t, q.Reject(time.Now()))
	assert.Equal(t, QuotationStatusRejected, q.Status)

	t.Run("expired quotation cannot be rejected", func(t *testing.T) {
		q := newTestQuotation(t, time.Hour)
		require.NoError(t, q.Send())
		err := q.Reject(time.Now().Add(2 * time.Hour))
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestQuotation_ItemSnapshots(t *testing.T) {
	q := newTestQuotation(t, time.Hour)
	snaps := q.ItemSnapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, q.Items[0].ProductID, snaps[0].ProductID)
	assert.True(t, snaps[0].UnitPrice.Equal(q.Items[0].UnitPrice))
}

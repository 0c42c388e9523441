package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSequenceRepository hands out document numbers from the
// number_sequences counter table. The upsert increments and returns the
// counter in one statement, so two concurrent callers can never draw the
// same value.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

var _ shared.SequenceRepository = (*GormSequenceRepository)(nil)

const nextSequenceSQL = `
INSERT INTO number_sequences (tenant_id, series, year, value)
VALUES (?, ?, ?, 1)
ON CONFLICT (tenant_id, series, year)
DO UPDATE SET value = number_sequences.value + 1
RETURNING value`

// Next returns the next sequence value for the series in the given year.
func (r *GormSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, series shared.DocumentSeries, year int) (int64, error) {
	var value int64
	if err := r.db.WithContext(ctx).
		Raw(nextSequenceSQL, tenantID, string(series), year).
		Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

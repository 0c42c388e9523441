package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DocumentSeries identifies a sequentially numbered document type.
type DocumentSeries string

const (
	SeriesInvoice   DocumentSeries = "INV"
	SeriesReceipt   DocumentSeries = "RCP"
	SeriesLayby     DocumentSeries = "LB"
	SeriesQuotation DocumentSeries = "QT"
)

// SequenceRepository hands out document numbers from a per-tenant,
// per-series, per-year atomic counter. The counter row is incremented in a
// single statement so concurrent callers never observe the same value,
// unlike the count-of-prefix scheme it replaces.
type SequenceRepository interface {
	// Next returns the next sequence value for the series in the given year.
	Next(ctx context.Context, tenantID uuid.UUID, series DocumentSeries, year int) (int64, error)
}

// FormatDocumentNumber renders a document number in the wire-compatible
// format, e.g. INV2026-00001, RCP2026-00042.
func FormatDocumentNumber(series DocumentSeries, year int, seq int64) string {
	return fmt.Sprintf("%s%d-%05d", series, year, seq)
}

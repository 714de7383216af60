package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/kasa/internal/usecase"
)

// DocumentNumberGenerator issues sequential document numbers of the form
// PREFIX + yyyymmdd + 4-digit daily counter (PMI202605020001). The counter
// row is upserted inside the caller's transaction, so a rolled-back write
// never burns a number and concurrent writers serialize on the row lock.
type DocumentNumberGenerator struct{}

// NewDocumentNumberGenerator creates a new DocumentNumberGenerator.
func NewDocumentNumberGenerator() *DocumentNumberGenerator {
	return &DocumentNumberGenerator{}
}

// Next returns the next number for (prefix, date).
func (g *DocumentNumberGenerator) Next(ctx context.Context, tx usecase.Transaction, prefix string, date time.Time) (string, error) {
	day := date.UTC().Format("20060102")

	var counter int64

	err := txq(tx).QueryRow(ctx, `
		INSERT INTO document_counters (prefix, counter_date, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, counter_date)
		DO UPDATE SET counter = document_counters.counter + 1
		RETURNING counter
	`, prefix, day).Scan(&counter)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s%04d", prefix, day, counter), nil
}

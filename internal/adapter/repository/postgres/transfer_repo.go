package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

const transferColumns = `id, transfer_no, from_account_id, to_account_id, from_amount, to_amount,
	exchange_rate, description, reference_no, created_at, event_at`

// Create inserts a transfer within a transaction.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := txq(tx).Exec(ctx, query,
		transfer.ID,
		transfer.TransferNo,
		transfer.FromAccountID,
		transfer.ToAccountID,
		decimalToNumeric(transfer.FromAmount),
		decimalToNumeric(transfer.ToAmount),
		decimalToNumeric(transfer.ExchangeRate),
		transfer.Description,
		transfer.ReferenceNo,
		timeToPgTimestamptz(transfer.CreatedAt),
		timeToPgTimestamptz(transfer.EventAt),
	)

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)

	transfer, err := scanTransferRows(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return transfer, nil
}

// ListByAccount retrieves transfers touching an account, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY event_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*domain.Transfer
	for rows.Next() {
		transfer, err := scanTransferRows(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

func scanTransferRows(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer   domain.Transfer
		fromAmount pgtype.Numeric
		toAmount   pgtype.Numeric
		rate       pgtype.Numeric
		created    pgtype.Timestamptz
		eventAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.TransferNo,
		&transfer.FromAccountID,
		&transfer.ToAccountID,
		&fromAmount,
		&toAmount,
		&rate,
		&transfer.Description,
		&transfer.ReferenceNo,
		&created,
		&eventAt,
	)
	if err != nil {
		return nil, err
	}

	transfer.FromAmount = numericToDecimal(fromAmount)
	transfer.ToAmount = numericToDecimal(toAmount)
	transfer.ExchangeRate = numericToDecimal(rate)
	transfer.CreatedAt = created.Time
	transfer.EventAt = eventAt.Time

	return &transfer, nil
}

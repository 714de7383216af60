package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository. The payment type
// is stored in its legacy single-string form and parsed back into the
// direction/category pair on read.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, payment_no, type, channel, amount, currency, exchange_rate,
	account_id, contact_id, description, reference_no, payment_date, created_at, updated_at`

// Create inserts a payment within a transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := txq(tx).Exec(ctx, query,
		payment.ID,
		payment.PaymentNo,
		payment.Type.String(),
		payment.Channel,
		decimalToNumeric(payment.Amount),
		payment.Currency,
		decimalToNumeric(payment.ExchangeRate),
		payment.AccountID,
		payment.ContactID,
		payment.Description,
		payment.ReferenceNo,
		timeToPgTimestamptz(payment.PaymentDate),
		timeToPgTimestamptz(payment.CreatedAt),
		timeToPgTimestamptz(payment.UpdatedAt),
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

// GetByIDForUpdate retrieves a payment with a FOR UPDATE lock.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	row := txq(tx).QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
	return scanPayment(row)
}

// Update replaces a payment within a transaction.
func (r *PaymentRepository) Update(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET type = $2, channel = $3, amount = $4, currency = $5, exchange_rate = $6,
		    account_id = $7, contact_id = $8, description = $9, reference_no = $10,
		    payment_date = $11, updated_at = $12
		WHERE id = $1
	`

	tag, err := txq(tx).Exec(ctx, query,
		payment.ID,
		payment.Type.String(),
		payment.Channel,
		decimalToNumeric(payment.Amount),
		payment.Currency,
		decimalToNumeric(payment.ExchangeRate),
		payment.AccountID,
		payment.ContactID,
		payment.Description,
		payment.ReferenceNo,
		timeToPgTimestamptz(payment.PaymentDate),
		timeToPgTimestamptz(payment.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// Delete removes a payment within a transaction.
func (r *PaymentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txq(tx).Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// List retrieves payments matching the filter, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter usecase.PaymentFilter) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.AccountID != "" {
		addArg(` AND account_id = $%d`, filter.AccountID)
	}

	if filter.ContactID != "" {
		addArg(` AND contact_id = $%d`, filter.ContactID)
	}

	if filter.Channel != "" {
		addArg(` AND channel = $%d`, filter.Channel)
	}

	if filter.Direction != "" && filter.Category != "" {
		addArg(` AND type = $%d`, domain.PaymentType{Direction: filter.Direction, Category: filter.Category}.String())
	} else if filter.Direction != "" {
		// The legacy encoding puts direction inside the string; match all
		// category variants of the requested direction.
		addArg(` AND type = ANY($%d)`, directionTypes(filter.Direction))
	} else if filter.Category != "" {
		addArg(` AND type = ANY($%d)`, categoryTypes(filter.Category))
	}

	if filter.StartDate != nil {
		addArg(` AND payment_date >= $%d`, timeToPgTimestamptz(*filter.StartDate))
	}

	if filter.EndDate != nil {
		addArg(` AND payment_date <= $%d`, timeToPgTimestamptz(*filter.EndDate))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY payment_date DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPaymentRows(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func directionTypes(d domain.Direction) []string {
	var types []string
	for _, c := range []domain.Category{
		domain.CategoryPayment, domain.CategoryIntraCompany,
		domain.CategoryInterCompany, domain.CategoryCurrencyExchange,
	} {
		types = append(types, domain.PaymentType{Direction: d, Category: c}.String())
	}
	return types
}

func categoryTypes(c domain.Category) []string {
	return []string{
		domain.PaymentType{Direction: domain.DirectionIncoming, Category: c}.String(),
		domain.PaymentType{Direction: domain.DirectionOutgoing, Category: c}.String(),
	}
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	payment, err := scanPaymentRows(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	return payment, nil
}

func scanPaymentRows(row pgx.Row) (*domain.Payment, error) {
	var (
		payment     domain.Payment
		typeStr     string
		amount      pgtype.Numeric
		rate        pgtype.Numeric
		paymentDate pgtype.Timestamptz
		created     pgtype.Timestamptz
		updated     pgtype.Timestamptz
	)

	err := row.Scan(
		&payment.ID,
		&payment.PaymentNo,
		&typeStr,
		&payment.Channel,
		&amount,
		&payment.Currency,
		&rate,
		&payment.AccountID,
		&payment.ContactID,
		&payment.Description,
		&payment.ReferenceNo,
		&paymentDate,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	payment.Type, err = domain.ParsePaymentType(typeStr)
	if err != nil {
		return nil, err
	}

	payment.Amount = numericToDecimal(amount)
	payment.ExchangeRate = numericToDecimal(rate)
	payment.PaymentDate = paymentDate.Time
	payment.CreatedAt = created.Time
	payment.UpdatedAt = updated.Time

	return &payment, nil
}

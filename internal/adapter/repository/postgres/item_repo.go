package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// ItemRepository implements usecase.ItemRepository. Profit figures come in
// precomputed and are stored as-is; they are never derived from prices on
// read.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

const itemColumns = `id, transaction_no, product_id, contact_id, company_id, quantity,
	unit_price, cost_price, currency, item_date, line_total, line_cost, line_profit, margin_pct`

// Create inserts a transaction line.
func (r *ItemRepository) Create(ctx context.Context, item *domain.TransactionItem) error {
	query := `
		INSERT INTO transaction_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.TransactionNo,
		item.ProductID,
		item.ContactID,
		item.CompanyID,
		decimalToNumeric(item.Quantity),
		decimalToNumeric(item.UnitPrice),
		decimalToNumeric(item.CostPrice),
		item.Currency,
		timeToPgTimestamptz(item.Date),
		decimalToNumeric(item.LineTotal),
		decimalToNumeric(item.LineCost),
		decimalToNumeric(item.LineProfit),
		decimalToNumeric(item.MarginPct),
	)

	return err
}

// List retrieves transaction lines matching the filter.
func (r *ItemRepository) List(ctx context.Context, filter usecase.ItemFilter) ([]*domain.TransactionItem, error) {
	query := `SELECT ` + itemColumns + ` FROM transaction_items WHERE 1=1`
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.ProductID != "" {
		addArg(` AND product_id = $%d`, filter.ProductID)
	}

	if filter.ContactID != "" {
		addArg(` AND contact_id = $%d`, filter.ContactID)
	}

	if filter.CompanyID != "" {
		addArg(` AND company_id = $%d`, filter.CompanyID)
	}

	if filter.Currency != "" {
		addArg(` AND currency = $%d`, filter.Currency)
	}

	if filter.StartDate != nil {
		addArg(` AND item_date >= $%d`, timeToPgTimestamptz(*filter.StartDate))
	}

	if filter.EndDate != nil {
		addArg(` AND item_date <= $%d`, timeToPgTimestamptz(*filter.EndDate))
	}

	query += ` ORDER BY item_date, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.TransactionItem
	for rows.Next() {
		var (
			item      domain.TransactionItem
			quantity  pgtype.Numeric
			unitPrice pgtype.Numeric
			costPrice pgtype.Numeric
			itemDate  pgtype.Timestamptz
			total     pgtype.Numeric
			cost      pgtype.Numeric
			profit    pgtype.Numeric
			margin    pgtype.Numeric
		)

		err := rows.Scan(
			&item.ID,
			&item.TransactionNo,
			&item.ProductID,
			&item.ContactID,
			&item.CompanyID,
			&quantity,
			&unitPrice,
			&costPrice,
			&item.Currency,
			&itemDate,
			&total,
			&cost,
			&profit,
			&margin,
		)
		if err != nil {
			return nil, err
		}

		item.Quantity = numericToDecimal(quantity)
		item.UnitPrice = numericToDecimal(unitPrice)
		item.CostPrice = numericToDecimal(costPrice)
		item.Date = itemDate.Time
		item.LineTotal = numericToDecimal(total)
		item.LineCost = numericToDecimal(cost)
		item.LineProfit = numericToDecimal(profit)
		item.MarginPct = numericToDecimal(margin)

		items = append(items, &item)
	}

	return items, rows.Err()
}

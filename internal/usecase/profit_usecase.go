package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
)

// GroupBy dimensions for profit reporting.
const (
	GroupByProduct = "product"
	GroupByContact = "contact"
	GroupByCompany = "company"
	GroupByDate    = "date"
)

// ProfitUseCase records transaction lines with their profit figures frozen
// at write time and aggregates them into reports. Reports mix currencies,
// so aggregate money is normalized to one reporting currency; lines whose
// currency cannot be converted are reported raw and flagged rather than
// silently converted at 1:1.
type ProfitUseCase struct {
	itemRepo    ItemRepository
	accountRepo AccountRepository
	rateSource  RateSource
	idGen       IDGenerator
}

// NewProfitUseCase creates a new ProfitUseCase.
func NewProfitUseCase(
	itemRepo ItemRepository,
	accountRepo AccountRepository,
	rateSource RateSource,
	idGen IDGenerator,
) *ProfitUseCase {
	return &ProfitUseCase{
		itemRepo:    itemRepo,
		accountRepo: accountRepo,
		rateSource:  rateSource,
		idGen:       idGen,
	}
}

// RecordItemInput represents one sale or purchase line.
type RecordItemInput struct {
	TransactionNo string
	ProductID     string
	ContactID     string
	CompanyID     string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	CostPrice     decimal.Decimal
	Currency      string
	Date          time.Time
}

// RecordItem persists a transaction line with its profit breakdown computed
// from the prices in effect now. Later price changes never alter it.
func (uc *ProfitUseCase) RecordItem(ctx context.Context, input RecordItemInput) (*domain.TransactionItem, error) {
	item := &domain.TransactionItem{
		ID:            uc.idGen.Generate(),
		TransactionNo: input.TransactionNo,
		ProductID:     input.ProductID,
		ContactID:     input.ContactID,
		CompanyID:     input.CompanyID,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		CostPrice:     input.CostPrice,
		Currency:      normalizeCurrency(input.Currency),
		Date:          input.Date,
	}

	if item.Date.IsZero() {
		item.Date = time.Now().UTC()
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	profit := domain.ComputeLineProfit(*item)
	item.LineTotal = profit.LineTotal
	item.LineCost = profit.LineCost
	item.LineProfit = profit.LineProfit
	item.MarginPct = profit.MarginPct

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// ProfitLossRow is one group of the profit report, in the reporting currency.
type ProfitLossRow struct {
	Key        string
	LineCount  int
	Total      decimal.Decimal
	Cost       decimal.Decimal
	Profit     decimal.Decimal
	MarginPct  decimal.Decimal
	Incomplete bool
}

// ProfitLossReport is the aggregated profit view.
type ProfitLossReport struct {
	Currency   string
	GroupBy    string
	Rows       []ProfitLossRow
	Total      decimal.Decimal
	Cost       decimal.Decimal
	Profit     decimal.Decimal
	MarginPct  decimal.Decimal
	Incomplete bool
}

// ProfitLoss aggregates lines matching the filter, grouped by the given
// dimension, with all money normalized to reportCurrency. Conversion uses
// the rate for the line date and falls back to the latest known rate; a
// line with no usable rate is excluded from the sums and flags its row and
// the report as incomplete.
func (uc *ProfitUseCase) ProfitLoss(ctx context.Context, filter ItemFilter, groupBy, reportCurrency string) (*ProfitLossReport, error) {
	reportCurrency = normalizeCurrency(reportCurrency)
	if reportCurrency == "" {
		reportCurrency = domain.BaseCurrency
	}

	if err := domain.ValidateCurrency(reportCurrency); err != nil {
		return nil, err
	}

	switch groupBy {
	case GroupByProduct, GroupByContact, GroupByCompany, GroupByDate:
	default:
		groupBy = GroupByProduct
	}

	items, err := uc.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &ProfitLossReport{
		Currency: reportCurrency,
		GroupBy:  groupBy,
	}

	rows := make(map[string]*ProfitLossRow)

	for _, item := range items {
		key := groupKey(item, groupBy)

		row, ok := rows[key]
		if !ok {
			row = &ProfitLossRow{Key: key}
			rows[key] = row
		}

		row.LineCount++

		rate, err := uc.NormalizeToReportingCurrency(ctx, item.Currency, reportCurrency, item.Date)
		if err != nil {
			if errors.Is(err, domain.ErrRateUnavailable) {
				row.Incomplete = true
				report.Incomplete = true
				continue
			}

			return nil, err
		}

		row.Total = row.Total.Add(item.LineTotal.Mul(rate))
		row.Cost = row.Cost.Add(item.LineCost.Mul(rate))
		row.Profit = row.Profit.Add(item.LineProfit.Mul(rate))
	}

	keys := make([]string, 0, len(rows))
	for key := range rows {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		row := rows[key]
		row.MarginPct = marginPct(row.Profit, row.Total)

		report.Rows = append(report.Rows, *row)
		report.Total = report.Total.Add(row.Total)
		report.Cost = report.Cost.Add(row.Cost)
		report.Profit = report.Profit.Add(row.Profit)
	}

	report.MarginPct = marginPct(report.Profit, report.Total)

	return report, nil
}

// CurrencyPosition is the aggregate balance held in one currency.
type CurrencyPosition struct {
	Currency   string
	Balance    decimal.Decimal
	BaseValue  decimal.Decimal
	Incomplete bool
}

// CurrencySummary is the whole-ledger position across currencies.
type CurrencySummary struct {
	Positions  []CurrencyPosition
	BaseTotal  decimal.Decimal
	Incomplete bool
}

// SummarizeCurrencies sums account balances per currency and values each
// position in the base currency at the latest known rate. Positions with no
// usable rate keep their raw balance and are flagged.
func (uc *ProfitUseCase) SummarizeCurrencies(ctx context.Context) (*CurrencySummary, error) {
	balances, err := uc.accountRepo.SumBalancesByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	currencies := make([]string, 0, len(balances))
	for currency := range balances {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	summary := &CurrencySummary{}

	for _, currency := range currencies {
		position := CurrencyPosition{
			Currency: currency,
			Balance:  balances[currency],
		}

		rate, err := uc.rateSource.ResolveRate(ctx, currency, time.Now().UTC())
		switch {
		case errors.Is(err, domain.ErrRateUnavailable):
			position.Incomplete = true
			summary.Incomplete = true
		case err != nil:
			return nil, err
		default:
			position.BaseValue = position.Balance.Mul(rate)
			summary.BaseTotal = summary.BaseTotal.Add(position.BaseValue)
		}

		summary.Positions = append(summary.Positions, position)
	}

	return summary, nil
}

// NormalizeToReportingCurrency returns the from->to rate for a line dated
// at date, preferring that date and falling back to the latest known
// quotes. No usable quote on either leg yields ErrRateUnavailable.
func (uc *ProfitUseCase) NormalizeToReportingCurrency(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, err := uc.rateSource.CrossRate(ctx, from, to, &date)
	if errors.Is(err, domain.ErrRateUnavailable) {
		rate, err = uc.rateSource.CrossRate(ctx, from, to, nil)
	}

	return rate, err
}

func marginPct(profit, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}

	return profit.DivRound(total, 8).Mul(decimal.NewFromInt(100))
}

func groupKey(item *domain.TransactionItem, groupBy string) string {
	switch groupBy {
	case GroupByContact:
		return item.ContactID
	case GroupByCompany:
		return item.CompanyID
	case GroupByDate:
		return item.Date.UTC().Format("2006-01-02")
	default:
		return item.ProductID
	}
}

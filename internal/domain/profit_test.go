package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeLineProfit(t *testing.T) {
	tests := []struct {
		name       string
		quantity   int64
		unitPrice  int64
		costPrice  int64
		lineTotal  int64
		lineCost   int64
		lineProfit int64
		marginPct  string
	}{
		{
			name:     "three units at 10 costing 6",
			quantity: 3, unitPrice: 10, costPrice: 6,
			lineTotal: 30, lineCost: 18, lineProfit: 12, marginPct: "40",
		},
		{
			name:     "sold at cost",
			quantity: 5, unitPrice: 8, costPrice: 8,
			lineTotal: 40, lineCost: 40, lineProfit: 0, marginPct: "0",
		},
		{
			name:     "sold below cost",
			quantity: 2, unitPrice: 5, costPrice: 10,
			lineTotal: 10, lineCost: 20, lineProfit: -10, marginPct: "-100",
		},
		{
			name:     "zero price has zero margin",
			quantity: 4, unitPrice: 0, costPrice: 3,
			lineTotal: 0, lineCost: 12, lineProfit: -12, marginPct: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeLineProfit(TransactionItem{
				Quantity:  decimal.NewFromInt(tt.quantity),
				UnitPrice: decimal.NewFromInt(tt.unitPrice),
				CostPrice: decimal.NewFromInt(tt.costPrice),
			})

			if !result.LineTotal.Equal(decimal.NewFromInt(tt.lineTotal)) {
				t.Errorf("line total: expected %d, got %s", tt.lineTotal, result.LineTotal)
			}

			if !result.LineCost.Equal(decimal.NewFromInt(tt.lineCost)) {
				t.Errorf("line cost: expected %d, got %s", tt.lineCost, result.LineCost)
			}

			if !result.LineProfit.Equal(decimal.NewFromInt(tt.lineProfit)) {
				t.Errorf("line profit: expected %d, got %s", tt.lineProfit, result.LineProfit)
			}

			expectedMargin, _ := decimal.NewFromString(tt.marginPct)
			if !result.MarginPct.Equal(expectedMargin) {
				t.Errorf("margin: expected %s, got %s", expectedMargin, result.MarginPct)
			}

			// line_profit = line_total - line_cost must hold exactly
			if !result.LineProfit.Equal(result.LineTotal.Sub(result.LineCost)) {
				t.Error("line profit does not equal line total minus line cost")
			}
		})
	}
}

func TestTransactionItem_Validate(t *testing.T) {
	item := TransactionItem{
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(10),
		Currency:  "USD",
	}
	if err := item.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	item.Quantity = decimal.Zero
	if err := item.Validate(); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

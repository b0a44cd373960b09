// Package chart turns ledger data into index-aligned series for a line chart.
package chart

import (
	"github.com/shopspring/decimal"

	"moneyflow/internal/core"
)

// BalanceLabel marks the synthetic trailing point that carries the current
// balance. Chart renderers key on this exact string.
const BalanceLabel = "Текущий баланс"

const (
	IncomeSeries  = 0
	ExpenseSeries = 1
)

// ChartSeries holds one shared label axis and two parallel datasets:
// income at index 0, expense at index 1. All three slices have equal length.
type ChartSeries struct {
	Labels   []string   `json:"labels"`
	Datasets [2]Dataset `json:"datasets"`
}

type Dataset struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Build lays out income points, then expense points, then one point for the
// balance. Every transaction point is non-zero in its own category's series
// only. The balance always sits in the income series, whatever its sign.
//
// The result has len(income)+len(expense)+1 points, so even an empty ledger
// yields a single balance point.
func Build(income, expense []core.Transaction, balance decimal.Decimal) ChartSeries {
	n := len(income) + len(expense) + 1
	s := ChartSeries{
		Labels: make([]string, 0, n),
		Datasets: [2]Dataset{
			{Name: core.Income.String(), Data: make([]float64, 0, n)},
			{Name: core.Expense.String(), Data: make([]float64, 0, n)},
		},
	}
	for _, tx := range income {
		s.add(tx.ID, tx.Amount, decimal.Zero)
	}
	for _, tx := range expense {
		s.add(tx.ID, decimal.Zero, tx.Amount)
	}
	s.add(BalanceLabel, balance, decimal.Zero)
	return s
}

func (s *ChartSeries) add(label string, income, expense decimal.Decimal) {
	s.Labels = append(s.Labels, label)
	s.Datasets[IncomeSeries].Data = append(s.Datasets[IncomeSeries].Data, income.InexactFloat64())
	s.Datasets[ExpenseSeries].Data = append(s.Datasets[ExpenseSeries].Data, expense.InexactFloat64())
}

func (s ChartSeries) Income() []float64 {
	return s.Datasets[IncomeSeries].Data
}

func (s ChartSeries) Expense() []float64 {
	return s.Datasets[ExpenseSeries].Data
}

// Len is the number of points, balance point included.
func (s ChartSeries) Len() int {
	return len(s.Labels)
}

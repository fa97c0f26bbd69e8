package drawer

import (
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates the money that moved during a session
type SalesSummary struct {
	CashSales   decimal.Decimal
	CardSales   decimal.Decimal
	CashRefunds decimal.Decimal
	CardRefunds decimal.Decimal
	SaleCount   int64
	ReturnCount int64
}

// TotalSales is cash plus card sales
func (s SalesSummary) TotalSales() decimal.Decimal {
	return s.CashSales.Add(s.CardSales)
}

// TotalRefunds is cash plus card refunds
func (s SalesSummary) TotalRefunds() decimal.Decimal {
	return s.CashRefunds.Add(s.CardRefunds)
}

// ReconciliationStatus classifies the counted drawer against the expected cash
type ReconciliationStatus string

const (
	StatusBalanced ReconciliationStatus = "balanced"
	StatusSurplus  ReconciliationStatus = "surplus"
	StatusShortage ReconciliationStatus = "shortage"
)

// Reconciliation is the result of counting the drawer at close
type Reconciliation struct {
	StartingBalance decimal.Decimal
	CashSales       decimal.Decimal
	CardSales       decimal.Decimal
	TotalSales      decimal.Decimal
	CashRefunds     decimal.Decimal
	ExpectedCash    decimal.Decimal
	EndingBalance   decimal.Decimal
	Difference      decimal.Decimal
	Status          ReconciliationStatus
}

// Reconcile compares a closed session's ending balance with the expected cash:
// expected = starting + cash sales - cash refunds, difference = ending - expected.
func Reconcile(s *Session, summary SalesSummary) (Reconciliation, error) {
	if s.EndingBalance == nil {
		return Reconciliation{}, ErrSessionStillOpen
	}

	expected := s.ExpectedCash(summary)
	diff := s.EndingBalance.Sub(expected)

	status := StatusBalanced
	switch diff.Sign() {
	case 1:
		status = StatusSurplus
	case -1:
		status = StatusShortage
	}

	return Reconciliation{
		StartingBalance: s.StartingBalance,
		CashSales:       summary.CashSales,
		CardSales:       summary.CardSales,
		TotalSales:      summary.TotalSales(),
		CashRefunds:     summary.CashRefunds,
		ExpectedCash:    expected,
		EndingBalance:   *s.EndingBalance,
		Difference:      diff,
		Status:          status,
	}, nil
}

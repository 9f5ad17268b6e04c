package services

import (
	"context"

	"fintrack/internal/core"
)

type totalsSource interface {
	Totals(ctx context.Context, userID int64) (core.Totals, error)
}

// ReportService builds the income/expense/savings summary from ledger totals.
type ReportService struct {
	ledger totalsSource
}

func NewReportService(ledger totalsSource) *ReportService {
	return &ReportService{ledger: ledger}
}

func (s *ReportService) Report(ctx context.Context, userID int64) (core.Report, error) {
	t, err := s.ledger.Totals(ctx, userID)
	if err != nil {
		return core.Report{}, err
	}
	return core.NewReport(userID, t), nil
}

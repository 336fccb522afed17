package services

import (
	"context"

	"kassza/internal/core"
	"kassza/internal/log"
	"kassza/internal/storage"
)

// ReportService wraps the aggregation queries behind the dashboard.
//
// Reporting never takes the dashboard down: every method returns a usable
// zero value alongside the error, so callers can log the fault and still
// render an empty report.
type ReportService struct {
	storage *storage.Repository
	logger  *log.Logger
}

func NewReportService(storage *storage.Repository, logger *log.Logger) *ReportService {
	return &ReportService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentReports),
	}
}

// MonthCounts returns per-currency transaction counts for a month.
func (s *ReportService) MonthCounts(ctx context.Context, month core.Month) (core.MonthCounts, error) {
	counts, err := s.storage.CountByMonth(ctx, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "month counts query failed",
			log.FieldMonth, month.String(), log.FieldError, err)
		return core.MonthCounts{}, err
	}
	return counts, nil
}

// IncomeExpense returns per-currency income and expense totals for a month.
func (s *ReportService) IncomeExpense(ctx context.Context, month core.Month) (core.IncomeExpense, error) {
	totals, err := s.storage.IncomeExpenseByMonth(ctx, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "income/expense query failed",
			log.FieldMonth, month.String(), log.FieldError, err)
		return core.IncomeExpense{}, err
	}
	return totals, nil
}

// DailyFlows returns per-day income and expense rows for a month. Days
// without transactions are absent from the result.
func (s *ReportService) DailyFlows(ctx context.Context, month core.Month) ([]core.DailyFlow, error) {
	flows, err := s.storage.DailyIncomeExpenseByMonth(ctx, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "daily flows query failed",
			log.FieldMonth, month.String(), log.FieldError, err)
		return []core.DailyFlow{}, err
	}
	return flows, nil
}

// CategorySpending returns per-category expense totals for a month,
// including the uncategorized bucket.
func (s *ReportService) CategorySpending(ctx context.Context, month core.Month) ([]core.CategorySpending, error) {
	rows, err := s.storage.SpendingByCategoryByMonth(ctx, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "category spending query failed",
			log.FieldMonth, month.String(), log.FieldError, err)
		return []core.CategorySpending{}, err
	}
	return rows, nil
}

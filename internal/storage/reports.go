package storage

import (
	"context"
	"fmt"

	"kassza/internal/core"
)

// The aggregation queries below all select over the half-open window
// [start, end) of one calendar month and partition every sum by
// currency. No cross-currency arithmetic happens anywhere: HUF and EUR
// totals are computed and reported side by side.

// CountByMonth counts the month's transactions per currency and overall.
func (r *Repository) CountByMonth(ctx context.Context, month core.Month) (core.MonthCounts, error) {
	start, end := month.Bounds()

	var counts core.MonthCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN currency = 'HUF' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN currency = 'EUR' THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM transactions
		WHERE date >= ? AND date < ?`, start, end,
	).Scan(&counts.HUF, &counts.EUR, &counts.Total)
	if err != nil {
		return core.MonthCounts{}, fmt.Errorf("count transactions for %s: %w", month, err)
	}
	return counts, nil
}

// IncomeExpenseByMonth sums the month's income (amount > 0) and expense
// (absolute value of amount < 0) per currency. Zero-amount rows count
// toward neither. Empty months report zeros, never nulls.
func (r *Repository) IncomeExpenseByMonth(ctx context.Context, month core.Month) (core.IncomeExpense, error) {
	start, end := month.Bounds()

	var ie core.IncomeExpense
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN currency = 'HUF' AND amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN currency = 'HUF' AND amount < 0 THEN ABS(amount) ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN currency = 'EUR' AND amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN currency = 'EUR' AND amount < 0 THEN ABS(amount) ELSE 0 END), 0)
		FROM transactions
		WHERE date >= ? AND date < ?`, start, end,
	).Scan(&ie.IncomeHUF, &ie.ExpenseHUF, &ie.IncomeEUR, &ie.ExpenseEUR)
	if err != nil {
		return core.IncomeExpense{}, fmt.Errorf("income/expense for %s: %w", month, err)
	}
	return ie, nil
}

// DailyIncomeExpenseByMonth returns one entry per distinct business date
// that has at least one transaction in the month, ordered by date
// ascending. Days without transactions are omitted rather than
// zero-filled.
func (r *Repository) DailyIncomeExpenseByMonth(ctx context.Context, month core.Month) ([]core.DailyFlow, error) {
	start, end := month.Bounds()

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			date,
			COALESCE(SUM(CASE WHEN currency = 'HUF' AND amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN currency = 'HUF' AND amount < 0 THEN ABS(amount) ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN currency = 'EUR' AND amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN currency = 'EUR' AND amount < 0 THEN ABS(amount) ELSE 0 END), 0)
		FROM transactions
		WHERE date >= ? AND date < ?
		GROUP BY date
		ORDER BY date ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily income/expense for %s: %w", month, err)
	}
	defer rows.Close()

	var days []core.DailyFlow
	for rows.Next() {
		var d core.DailyFlow
		if err := rows.Scan(&d.Date, &d.IncomeHUF, &d.ExpenseHUF, &d.IncomeEUR, &d.ExpenseEUR); err != nil {
			return nil, fmt.Errorf("scan daily flow: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily flows: %w", err)
	}
	return days, nil
}

// SpendingByCategoryByMonth groups the month's expenses (amount < 0) by
// category and sums absolute amounts per currency. Uncategorized rows
// fall into a bucket with id 0 and the UncategorizedLabel display name;
// ordering is by display name, the label included. Groups whose HUF and
// EUR totals are both zero (possible with other currencies) are dropped.
func (r *Repository) SpendingByCategoryByMonth(ctx context.Context, month core.Month) ([]core.CategorySpending, error) {
	start, end := month.Bounds()

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			COALESCE(t.category_id, 0),
			COALESCE(c.name, ?),
			COALESCE(SUM(CASE WHEN t.currency = 'HUF' THEN ABS(t.amount) ELSE 0 END), 0) AS spent_huf,
			COALESCE(SUM(CASE WHEN t.currency = 'EUR' THEN ABS(t.amount) ELSE 0 END), 0) AS spent_eur
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.date >= ? AND t.date < ? AND t.amount < 0
		GROUP BY COALESCE(t.category_id, 0), COALESCE(c.name, ?)
		HAVING spent_huf > 0 OR spent_eur > 0
		ORDER BY COALESCE(c.name, ?) ASC`,
		core.UncategorizedLabel, start, end, core.UncategorizedLabel, core.UncategorizedLabel)
	if err != nil {
		return nil, fmt.Errorf("spending by category for %s: %w", month, err)
	}
	defer rows.Close()

	var spending []core.CategorySpending
	for rows.Next() {
		var s core.CategorySpending
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &s.SpentHUF, &s.SpentEUR); err != nil {
			return nil, fmt.Errorf("scan category spending: %w", err)
		}
		spending = append(spending, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category spending: %w", err)
	}
	return spending, nil
}

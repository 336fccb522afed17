package core

// MonthCounts holds per-currency transaction counts for one month.
type MonthCounts struct {
	HUF   int `json:"countHUF"`
	EUR   int `json:"countEUR"`
	Total int `json:"countTotal"`
}

// IncomeExpense holds one month's income and expense totals, partitioned
// by currency. Expense totals are absolute values; zero-amount rows
// contribute to neither side.
type IncomeExpense struct {
	IncomeHUF  float64 `json:"incomeHUF"`
	ExpenseHUF float64 `json:"expenseHUF"`
	IncomeEUR  float64 `json:"incomeEUR"`
	ExpenseEUR float64 `json:"expenseEUR"`
}

// DailyFlow is one day's income/expense totals within a month. Days with
// no transactions produce no entry.
type DailyFlow struct {
	Date       string  `json:"date"`
	IncomeHUF  float64 `json:"totalIncomeHUF"`
	ExpenseHUF float64 `json:"totalExpenseHUF"`
	IncomeEUR  float64 `json:"totalIncomeEUR"`
	ExpenseEUR float64 `json:"totalExpenseEUR"`
}

// CategorySpending is one category's expense total for a month. The
// uncategorized bucket reports CategoryID 0 and UncategorizedLabel.
type CategorySpending struct {
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	SpentHUF     float64 `json:"totalSpentHUF"`
	SpentEUR     float64 `json:"totalSpentEUR"`
}

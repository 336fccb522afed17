package http

import (
	"net/http"
	"strings"

	"kassza/internal/core"
	"kassza/internal/log"
	"kassza/internal/rates"
)

// dashboardResponse is the one-call payload the dashboard renders from.
// Report sections degrade to zero values on storage faults; only an
// unparseable month parameter fails the request.
type dashboardResponse struct {
	Month      string                  `json:"month"`
	PrevMonth  string                  `json:"prevMonth"`
	NextMonth  string                  `json:"nextMonth"`
	Counts     core.MonthCounts        `json:"counts"`
	Totals     core.IncomeExpense      `json:"totals"`
	DailyFlows []core.DailyFlow        `json:"dailyFlows"`
	Spending   []core.CategorySpending `json:"spending"`
	Recent     []transactionResponse   `json:"recentTransactions"`
	Rate       rates.Result            `json:"eurHufRate"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month := core.CurrentMonth()
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		parsed, err := core.ParseMonth(v)
		if err != nil {
			writeError(w, err)
			return
		}
		month = parsed
	}

	key := month.String()
	if cached, ok := s.dashCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ctx := r.Context()

	// Each section degrades independently; the report services log the
	// fault and hand back zero values.
	counts, _ := s.reports.MonthCounts(ctx, month)
	totals, _ := s.reports.IncomeExpense(ctx, month)
	flows, _ := s.reports.DailyFlows(ctx, month)
	spending, _ := s.reports.CategorySpending(ctx, month)

	recent, err := s.ledger.ListRecentTransactions(ctx, s.recentLimit)
	if err != nil {
		s.logger.ErrorContext(ctx, "recent transactions query failed",
			log.FieldMonth, key, log.FieldError, err)
		recent = nil
	}

	rate := rates.Result{Err: "exchange rate unavailable"}
	if s.rates != nil {
		rate = s.rates.Current(ctx, core.EUR, core.HUF)
	}

	resp := dashboardResponse{
		Month:      key,
		PrevMonth:  month.Prev().String(),
		NextMonth:  month.Next().String(),
		Counts:     counts,
		Totals:     totals,
		DailyFlows: flows,
		Spending:   spending,
		Recent:     toTransactionResponses(recent),
		Rate:       rate,
	}

	s.dashCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"kassza/internal/core"
)

type transactionResponse struct {
	ID           int64   `json:"id"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Date         string  `json:"date"`
	CategoryID   *int64  `json:"categoryId"`
	CategoryName *string `json:"categoryName"`
	CreatedAt    string  `json:"createdAt"`
}

func toTransactionResponse(tr core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tr.ID,
		Description:  tr.Description,
		Amount:       tr.Amount,
		Currency:     string(tr.Currency),
		Date:         tr.Date,
		CategoryID:   tr.CategoryID,
		CategoryName: tr.CategoryName,
		CreatedAt:    tr.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponses(trs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(trs))
	for _, tr := range trs {
		out = append(out, toTransactionResponse(tr))
	}
	return out
}

type createTransactionRequest struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Currency    string   `json:"currency"`
	Date        string   `json:"date"`
	CategoryID  *int64   `json:"categoryId"`
}

// updateTransactionRequest distinguishes absent fields from explicit nulls
// for categoryId: absent leaves the category alone, null clears it.
type updateTransactionRequest struct {
	Description *string         `json:"description"`
	Amount      *float64        `json:"amount"`
	Currency    *string         `json:"currency"`
	Date        *string         `json:"date"`
	CategoryID  json.RawMessage `json:"categoryId"`
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", core.ErrNotFound)
	}
	return id, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		trs []core.Transaction
		err error
	)
	if r.URL.Query().Get("recent") != "" {
		trs, err = s.ledger.ListRecentTransactions(r.Context(), s.recentLimit)
	} else {
		trs, err = s.ledger.ListTransactions(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(trs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tr, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tr))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Amount == nil {
		writeError(w, core.ErrInvalidAmount)
		return
	}

	tr, err := s.ledger.AddTransaction(r.Context(), core.NewTransactionParams{
		Description: req.Description,
		Amount:      *req.Amount,
		Date:        req.Date,
		Currency:    core.Currency(req.Currency),
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, toTransactionResponse(tr))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	params := core.UpdateTransactionParams{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	}
	if req.Currency != nil {
		currency := core.Currency(*req.Currency)
		params.Currency = &currency
	}
	if len(req.CategoryID) > 0 {
		var categoryID *int64
		if err := json.Unmarshal(req.CategoryID, &categoryID); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid categoryId"})
			return
		}
		params.CategoryID = &categoryID
	}

	tr, err := s.ledger.UpdateTransaction(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusOK, toTransactionResponse(tr))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}

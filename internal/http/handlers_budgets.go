package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
)

type createBudgetRequest struct {
	Category string     `json:"category"`
	Limit    jsonAmount `json:"limit"`
	Month    int        `json:"month"`
	Year     int        `json:"year"`
}

type budgetJSON struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Month    int     `json:"month"`
	Year     int     `json:"year"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(string(req.Limit))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	b := core.Budget{
		UserID:   userIDFrom(r.Context()),
		Category: req.Category,
		Limit:    core.Money{Cents: cents},
		Month:    req.Month,
		Year:     req.Year,
	}
	if err := b.Validate(); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	id, err := s.budgets.CreateBudget(r.Context(), b)
	if err != nil {
		respondServerError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.ListBudgets(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		respondServerError(r.Context(), w, err)
		return
	}

	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetJSON{
			ID:       b.ID,
			Category: b.Category,
			Limit:    b.Limit.Units(),
			Month:    b.Month,
			Year:     b.Year,
		})
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.budgets.DeleteBudget(r.Context(), userIDFrom(r.Context()), id); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"id": id})
}

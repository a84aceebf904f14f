package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// jsonAmount accepts a monetary amount as either a JSON number or a string,
// deferring actual parsing to core.ParseDecimalToCents.
type jsonAmount string

func (a *jsonAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = jsonAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = jsonAmount(n.String())
	return nil
}

type createTransactionRequest struct {
	Type        string     `json:"type"`
	Amount      jsonAmount `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	CardID      int64      `json:"card_id"`
}

type transactionJSON struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CardID      int64   `json:"card_id,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount.Units(),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		CardID:      t.CardID,
	}
}

// parseTransactionBody decodes and validates a transaction payload for the
// authenticated user. The bool result reports whether a response was already
// written.
func parseTransactionBody(w http.ResponseWriter, r *http.Request) (core.Transaction, bool) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return core.Transaction{}, false
	}

	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return core.Transaction{}, false
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return core.Transaction{}, false
	}

	t := core.Transaction{
		UserID:      userIDFrom(r.Context()),
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
		Description: req.Description,
		Date:        core.Date{Time: date},
		CardID:      req.CardID,
	}
	if err := t.Validate(); err != nil {
		respondDomainError(r.Context(), w, err)
		return core.Transaction{}, false
	}
	return t, true
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := parseTransactionBody(w, r)
	if !ok {
		return
	}

	id, err := s.transactions.CreateTransaction(r.Context(), t)
	if err != nil {
		respondServerError(r.Context(), w, err)
		return
	}

	s.invalidateInsights(t.UserID)
	s.publishSync(r, id)

	respondData(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r)
	txs, err := s.transactions.ListTransactions(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		respondServerError(r.Context(), w, err)
		return
	}

	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, err := s.transactions.GetTransaction(r.Context(), id)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	// Ownership check happens here because the lookup itself is by ID only.
	if t.UserID != userIDFrom(r.Context()) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	respondData(w, http.StatusOK, toTransactionJSON(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, ok := parseTransactionBody(w, r)
	if !ok {
		return
	}
	t.ID = id

	// Ownership rides on the store's user-scoped update: a foreign or missing
	// transaction comes back as not found.
	if err := s.transactions.UpdateTransaction(r.Context(), t); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	s.invalidateInsights(t.UserID)
	s.publishSync(r, id)

	respondData(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := userIDFrom(r.Context())
	if err := s.transactions.DeleteTransaction(r.Context(), userID, id); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	s.invalidateInsights(userID)
	s.publishDelete(r, id, userID)

	respondData(w, http.StatusOK, map[string]int64{"id": id})
}

// publishSync enqueues the ledger append. The write already committed, so a
// broker failure is logged and the request still succeeds; the worker's
// pending resync covers the gap.
func (s *Server) publishSync(r *http.Request, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(r.Context(), id, 1); err != nil {
		slog.WarnContext(r.Context(), "Failed to publish sync message",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldTxID, id,
			log.FieldError, err)
	}
}

func (s *Server) publishDelete(r *http.Request, id, userID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionDelete(r.Context(), id, userID); err != nil {
		slog.WarnContext(r.Context(), "Failed to publish delete message",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldTxID, id,
			log.FieldError, err)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func queryLimit(r *http.Request) int {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
)

// insightsResponse is the endpoint's wire shape; insights keep their own key
// instead of the generic data envelope.
type insightsResponse struct {
	Success  bool           `json:"success"`
	Insights []core.Insight `json:"insights"`
}

func insightCacheKey(userID int64) string {
	return fmt.Sprintf("insights:%d", userID)
}

// handleGetInsights serves the insight list, cached per user so repeated
// requests don't re-run the pipeline or re-call the generative API.
func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	key := insightCacheKey(userID)

	if cached, ok := s.insightCache.Get(key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, insightsResponse{Success: true, Insights: cached})
		return
	}

	list, err := s.composer.Compose(r.Context(), userID)
	if err != nil {
		respondServerError(r.Context(), w, err)
		return
	}

	s.insightCache.Set(key, list)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, insightsResponse{Success: true, Insights: list})
}

// invalidateInsights drops the cached list after a transaction mutation so
// the next read reflects it.
func (s *Server) invalidateInsights(userID int64) {
	s.insightCache.Delete(insightCacheKey(userID))
}

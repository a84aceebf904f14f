// Package http is the JSON API surface: transactions, budgets, cards, and the
// insights endpoint.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/store"
)

const defaultInsightCacheTTL = 5 * time.Minute

// Publisher enqueues ledger sync work after transaction mutations. Nil
// disables publishing.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
	PublishTransactionDelete(ctx context.Context, id, userID int64) error
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Transactions store.TransactionStore
	Budgets      store.BudgetStore
	Cards        store.CardStore
	Users        store.UserResolver
	Composer     *insights.Composer
	Publisher    Publisher
	// Ready reports backend health for the readiness check. Nil means always
	// ready.
	Ready func(ctx context.Context) error
	// InsightCacheTTL bounds how stale a served insight list can be.
	InsightCacheTTL time.Duration
}

type Server struct {
	http.Server

	transactions store.TransactionStore
	budgets      store.BudgetStore
	cards        store.CardStore
	users        store.UserResolver
	composer     *insights.Composer
	publisher    Publisher
	ready        func(ctx context.Context) error

	insightCache *cache.LRU[[]core.Insight]
	limiter      *ratelimit.Limiter
	traceMW      *trace.Middleware
}

func NewServer(addr string, deps Deps) *Server {
	ttl := deps.InsightCacheTTL
	if ttl <= 0 {
		ttl = defaultInsightCacheTTL
	}

	s := &Server{
		transactions: deps.Transactions,
		budgets:      deps.Budgets,
		cards:        deps.Cards,
		users:        deps.Users,
		composer:     deps.Composer,
		publisher:    deps.Publisher,
		ready:        deps.Ready,
		insightCache: cache.NewLRU[[]core.Insight](1024, ttl),
		limiter:      ratelimit.New(0),
		traceMW:      trace.NewMiddleware(clientIP),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/v1/insights", s.requireAuth(s.handleGetInsights))

	// Rate limiting sits outside auth so unauthenticated floods are cheap to
	// reject; reads are unlimited.
	mux.HandleFunc("POST /api/v1/transactions", s.limited(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/v1/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("GET /api/v1/transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/v1/transactions/{id}", s.limited(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.limited(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("POST /api/v1/budgets", s.limited(s.requireAuth(s.handleCreateBudget)))
	mux.HandleFunc("GET /api/v1/budgets", s.requireAuth(s.handleListBudgets))
	mux.HandleFunc("DELETE /api/v1/budgets/{id}", s.limited(s.requireAuth(s.handleDeleteBudget)))

	mux.HandleFunc("POST /api/v1/cards", s.limited(s.requireAuth(s.handleCreateCard)))
	mux.HandleFunc("GET /api/v1/cards", s.requireAuth(s.handleListCards))
	mux.HandleFunc("DELETE /api/v1/cards/{id}", s.limited(s.requireAuth(s.handleDeleteCard)))

	s.Addr = addr
	s.Handler = s.traceMW.Handler(security.Headers(mux))

	return s
}

// Close stops background goroutines in addition to the listener.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.Server.Close()
}

// limited applies the per-client rate limit to mutating endpoints.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			respondError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "Not ready")
			return
		}
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ready"})
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the socket
// peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

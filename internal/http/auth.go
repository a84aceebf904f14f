package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/log"
)

type contextKey string

const userIDKey contextKey = "user_id"

// requireAuth resolves the bearer token to a user ID and stores it in the
// request context. Every failure, missing header included, answers 401 with
// the same body so token probing learns nothing.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		userID, err := s.users.UserIDByToken(r.Context(), token)
		if err != nil {
			slog.WarnContext(r.Context(), "Token resolution failed",
				log.FieldComponent, log.ComponentAuth,
				log.FieldClientIP, clientIP(r))
			respondError(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func userIDFrom(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

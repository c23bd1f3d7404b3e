package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zansmarket/storefront-backend/pkg/logger"
)

const (
	DefaultCartSessionHeader = "X-Cart-Session"
	maxCartSessionLength     = 128
)

// CartSession resolves the shopper's cart session from header. A fresh id is
// minted when the client has none, and the id is always echoed back so the
// client can keep presenting it.
func CartSession(header string, logg *logger.Logger) func(http.Handler) http.Handler {
	if strings.TrimSpace(header) == "" {
		header = DefaultCartSessionHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(header))
			if sessionID == "" || len(sessionID) > maxCartSessionLength || strings.ContainsAny(sessionID, ": \t") {
				sessionID = uuid.NewString()
			}

			w.Header().Set(header, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/zansmarket/storefront-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Upstream ids are echoed into logs and error bodies, so only short tokens
// without whitespace or markup are trusted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID reuses a well-formed X-Request-Id from the caller or mints a
// uuid, echoes it on the response and tags the request's log entries.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if !requestIDPattern.MatchString(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

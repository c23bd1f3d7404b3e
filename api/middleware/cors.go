package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // storefront dev server
	"http://localhost:5173", // vite
}

// CORS returns middleware that applies the API's allowed origin policy.
// Extra origins extend the local defaults.
func CORS(sessionHeader string, origins ...string) func(http.Handler) http.Handler {
	if sessionHeader == "" {
		sessionHeader = DefaultCartSessionHeader
	}
	allowed := append(append([]string{}, defaultCORSOrigins...), origins...)
	return cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", requestIDHeader, sessionHeader},
		ExposedHeaders:   []string{requestIDHeader, sessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

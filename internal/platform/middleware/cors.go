package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// DefaultAllowedOrigin is the frontend dev server origin.
const DefaultAllowedOrigin = "http://localhost:5173"

// DefaultCORSMaxAge is how long (seconds) browsers may cache a preflight result.
const DefaultCORSMaxAge = 300

// CORSConfig controls the cross-origin policy.
type CORSConfig struct {
	// AllowedOrigins lists exact origins allowed to read responses.
	// Empty means DefaultAllowedOrigin. Wildcards are not supported because
	// credentials are allowed.
	AllowedOrigins []string
	// MaxAge in seconds. Zero means DefaultCORSMaxAge.
	MaxAge int
}

// CORS returns the credentialed cross-origin middleware. Only exact origin
// matches receive Access-Control-Allow-Origin; all methods and request
// headers are permitted, and preflight requests are answered without
// reaching downstream handlers.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{DefaultAllowedOrigin}
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultCORSMaxAge
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}

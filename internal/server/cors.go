package server

import (
	"net/http"

	"github.com/go-chi/cors"

	"prescripto-backend/internal/config"
)

// corsMiddleware enforces the origin allow-list. Pre-flights from other
// origins are answered without Access-Control-Allow-Origin, so browsers
// refuse the actual request.
func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = config.DefaultAllowedOrigins
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = config.DefaultAllowedMethods
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = config.DefaultAllowedHeaders
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}

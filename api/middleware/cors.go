package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the UI shell origins to call the API and read the session headers.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionIDHeader, RequestIDHeader, IdempotencyKeyHeader},
		ExposedHeaders:   []string{SessionIDHeader, RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}

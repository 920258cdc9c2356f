package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the browser client at allowedOrigins to call the API with its
// session cookie. Requests from other origins get no CORS headers and the
// browser blocks them. An empty list denies every cross-origin request.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	if len(allowedOrigins) == 0 {
		// rs/cors treats an empty list as "*".
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts).Handler
}

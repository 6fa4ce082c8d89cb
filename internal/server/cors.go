package server

import (
	"net/http"
	"slices"
)

// CORS returns middleware enforcing an exact-origin allow-list for the chat
// route. The widget runs embedded on customer sites, so every deployment
// lists its site origins explicitly; "*" opens the route to any origin.
// Requests from unlisted or absent origins get the literal grant "null",
// which browsers refuse to match against a real origin but which lets
// originless callers (curl, server-side tests) through.
//
// Only simple POST requests are expected, so the preflight grant is fixed:
// POST with a Content-Type header, cached for a day.
func CORS(allowed []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowed, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			if origin != "" && (wildcard || slices.Contains(allowed, origin)) {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "null")
			}
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

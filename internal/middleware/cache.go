package middleware

import (
	"net/http"
)

// NoStore keeps per-user API responses out of shared and browser caches. Responses depend on the
// bearer token and the negotiated locale, so both are listed in Vary.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, private")
		h.Add("Vary", "Authorization")
		h.Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

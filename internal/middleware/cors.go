package middleware

import (
	"net/http"
	"strings"

	"github.com/soaringjerry/NeuroReclaim/internal/utils"
)

// corsMethods are the methods the API routes serve.
const corsMethods = "GET,POST,PUT,DELETE,OPTIONS"

// CORS answers cross-origin requests from the given origins. An empty list or "*" allows any
// origin; credentials are never sent, the API authenticates with a bearer token.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	wildcard := len(origins) == 0
	for _, o := range origins {
		for _, v := range utils.ParseList(o) {
			if v == "*" {
				wildcard = true
				continue
			}
			allowed[strings.ToLower(strings.TrimRight(v, "/"))] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[strings.ToLower(origin)]:
				h.Set("Access-Control-Allow-Origin", origin)
			default:
				// unknown origin: no CORS headers, the browser blocks the response
				if r.Method == http.MethodOptions && origin != "" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language, X-Request-Id")
			h.Set("Access-Control-Expose-Headers", "X-Request-Id, Content-Language")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

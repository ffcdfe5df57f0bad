package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/NeuroReclaim/internal/utils"
)

type localeCtxKey struct{}

// LocaleMiddleware negotiates the response locale from ?lang= or Accept-Language, echoes it in
// Content-Language and stores it in the request context.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), utils.SupportedLocales, utils.DefaultLocale())
		w.Header().Set("Content-Language", locale)
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), locale)))
	})
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeCtxKey{}, locale)
}

// LocaleFromContext returns the negotiated locale, or the default one outside LocaleMiddleware.
func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeCtxKey{}).(string); ok && s != "" {
		return s
	}
	return utils.DefaultLocale()
}

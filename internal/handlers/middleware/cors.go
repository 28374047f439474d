package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

const preflightMaxAge = 24 * 60 * 60 // cache preflight for 24 hours

// CORSConfig lists origins the browser frontend is served from
type CORSConfig struct {
	AllowedOrigins []string
}

// CORSMiddleware answers preflight requests and stamps allow headers on
// responses to the listed origins. Credentials are always allowed because
// the refresh token travels in a cookie
func CORSMiddleware(cfg CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && slices.Contains(cfg.AllowedOrigins, origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")

				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", strings.Join([]string{
						http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
					}, ", "))
					h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
					h.Set("Access-Control-Max-Age", strconv.Itoa(preflightMaxAge))
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

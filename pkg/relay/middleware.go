package relay

import (
	"net/http"
	"strconv"
)

// rateLimit rejects requests with 429 once the shared token bucket is empty.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(float64(s.limiter.Limit()), 'f', -1, 64))

		if !s.limiter.Allow() {
			s.logger.Sugar().Debugw("Rate limit exceeded", "remote", r.RemoteAddr, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

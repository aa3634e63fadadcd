package ordersapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit is a fixed one-minute window per client IP backed by Limiter.
// Limiter failures let the request through.
type RateLimit struct {
	l         Limiter
	perMinute int64
	now       func() time.Time
}

func NewRateLimit(l Limiter, perMinute int64) *RateLimit {
	if l == nil || perMinute <= 0 {
		return nil
	}
	return &RateLimit{l: l, perMinute: perMinute, now: time.Now}
}

func (rl *RateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := fmt.Sprintf("rl:api:%s:%s", ip, rl.now().UTC().Format("200601021504"))
		allowed, n, err := rl.l.Allow(r.Context(), key, rl.perMinute, 70*time.Second)
		if err != nil {
			slog.Warn("rate limiter unavailable", "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(60-rl.now().UTC().Second()))
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			slog.Debug("rate limit exceeded", "ip", ip, "count", n)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"bookstock/internal/pkg/cache"
	"bookstock/internal/pkg/logger"
)

// RateLimiter limita cada IP a limit requisições por janela (contador fixo no cache).
// Se o cache falhar, a requisição passa e a falha é registrada.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := "rate-limit:" + clientIP(r)

			count, err := client.Incr(ctx, key)
			if err != nil {
				log.Warn("Rate limit indisponível; requisição liberada.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				// Primeira requisição da janela: define o TTL do contador.
				if err := client.Expire(ctx, key, window); err != nil {
					log.Warn("Falha ao definir TTL do rate limit.", map[string]interface{}{"key": key, "error": err.Error()})
				}
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Idempotency guards order submission against double-clicks and client
// retries. The first request holding a given Idempotency-Key wins; replays
// within the TTL get a conflict instead of a second order upstream. With no
// redis client configured the guard is a no-op, matching the service's
// redis-optional posture.
type Idempotency struct {
	Redis *redis.Client
	TTL   time.Duration
}

func idempotencyKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "tienda:idem:" + hex.EncodeToString(sum[:])
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idempotency) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.Redis == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := idempotencyKey(header)
		claimed, err := i.Redis.SetNX(r.Context(), key, "claimed", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, CodeInternal, "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !claimed {
			JSONError(w, http.StatusConflict, CodeIdempotentReplay, "duplicate request", nil)
			return
		}
		defer func() {
			// ensure the key expires even if the handler panics
			_ = i.Redis.Expire(context.Background(), key, i.TTL).Err()
		}()
		next.ServeHTTP(w, r)
	})
}

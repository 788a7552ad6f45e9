package ratelimit

import (
	"net/http"
	"time"

	"edge-gatekeeper/middleware/envelope"
	"edge-gatekeeper/middleware/ratelimit/application"
	"edge-gatekeeper/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	Respond        *envelope.Writer
}

// ConcurrencyMiddleware limita o número de requisições em voo. Saturou,
// responde 503 em envelope; o cliente decide se tenta de novo.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Respond == nil {
		opts.Respond = &envelope.Writer{}
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				opts.Respond.WriteError(w, r, "Service is temporarily overloaded", http.StatusServiceUnavailable, nil)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"edge-gatekeeper/middleware/envelope"
	"edge-gatekeeper/middleware/ratelimit/application"
	"edge-gatekeeper/middleware/ratelimit/domain"
)

type Options struct {
	Store  domain.Checker
	Policy domain.Policy
	Stats  domain.StatsStore
	// Identify resolve a chave do cliente. Se nil, usa ClientIdentifier com
	// TrustedIPHeader (ou o default).
	Identify        IdentifierFunc
	TrustedIPHeader string
	Respond         *envelope.Writer
	Clock           domain.Clock
	Logger          *slog.Logger
}

const (
	headerLimit      = "X-RateLimit-Limit"
	headerRemaining  = "X-RateLimit-Remaining"
	headerReset      = "X-RateLimit-Reset"
	headerRetryAfter = "Retry-After"
)

// Middleware aplica a policy de admissão do endpoint antes do handler.
//
// Toda resposta carrega X-RateLimit-Limit/Remaining/Reset; o bloqueio sai como
// 429 em envelope com Retry-After. O registro de estatísticas é best-effort e
// nunca derruba a requisição.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Identify == nil {
		trusted := opts.TrustedIPHeader
		if trusted == "" {
			trusted = DefaultTrustedIPHeader
		}
		opts.Identify = ClientIdentifier(trusted)
	}
	if opts.Respond == nil {
		opts.Respond = &envelope.Writer{}
	}

	svc := application.Service{
		Store: opts.Store,
		Clock: opts.Clock,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := domain.Key(opts.Identify(r))

			dec := svc.Decide(key, opts.Policy)

			if opts.Stats != nil {
				err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     key,
					Policy:  opts.Policy.Name,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
				if err != nil && opts.Logger != nil {
					opts.Logger.Warn("admission stats record failed", "error", err)
				}
			}

			w.Header().Set(headerLimit, formatInt(opts.Policy.Limit))
			w.Header().Set(headerRemaining, formatInt(dec.Remaining))
			if !dec.ResetAt.IsZero() {
				w.Header().Set(headerReset, dec.ResetAt.UTC().Format(time.RFC3339))
			}

			if !dec.Allowed {
				retry := ceilSeconds(dec.RetryAfter)
				w.Header().Set(headerRetryAfter, formatInt(retry))
				msg := fmt.Sprintf("Rate limit exceeded. Please try again in %d minutes.", ceilMinutes(retry))
				opts.Respond.WriteError(w, r, msg, http.StatusTooManyRequests, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package application

import (
	"time"

	"edge-gatekeeper/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do controle de admissão.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.Checker
	Clock domain.Clock
}

// Decision agrega o resultado do checker com o Retry-After calculado.
type Decision struct {
	domain.Result
	Policy domain.Policy
	// RetryAfter é o tempo até a janela corrente expirar, quando bloqueado.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

func (s Service) Decide(key domain.Key, p domain.Policy) Decision {
	if s.Store == nil || p.Limit <= 0 || p.Window <= 0 {
		return Decision{Result: domain.Result{Allowed: true, Remaining: p.Limit}, Policy: p}
	}

	res := s.Store.Check(key, p)
	dec := Decision{Result: res, Policy: p}
	if !res.Allowed {
		dec.RetryAfter = res.ResetAt.Sub(s.now())
		if dec.RetryAfter < 0 {
			dec.RetryAfter = 0
		}
	}
	return dec
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

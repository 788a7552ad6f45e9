package infra

import (
	"sync"
	"time"

	"edge-gatekeeper/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// SmoothStore é a alternativa suavizada ao WindowStore: token bucket por chave
// via golang.org/x/time/rate.
//
// A janela fixa admite até 2x o limite atravessando a fronteira entre janelas;
// quando esse comportamento não é aceitável, este store distribui o orçamento
// ao longo da janela (rps = limite/janela, burst = limite).
//
// Remaining/ResetAt são aproximações: o bucket não tem uma "janela corrente",
// então Remaining é o número de tokens inteiros disponíveis e ResetAt o
// instante estimado do próximo token.
type SmoothStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*smoothEntry
	clock        domain.Clock
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type smoothEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type SmoothOption func(*SmoothStore)

func WithSmoothClock(c domain.Clock) SmoothOption {
	return func(s *SmoothStore) { s.clock = c }
}

func WithIdleTTL(d time.Duration) SmoothOption {
	return func(s *SmoothStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) SmoothOption {
	return func(s *SmoothStore) { s.cleanupEvery = d }
}

func NewSmoothStore(opts ...SmoothOption) *SmoothStore {
	s := &SmoothStore{
		entries:      make(map[domain.Key]*smoothEntry),
		clock:        domain.ClockFunc(time.Now),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SmoothStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Check implementa domain.Checker.
func (s *SmoothStore) Check(key domain.Key, p domain.Policy) domain.Result {
	now := s.clock.Now()
	lim := s.limiterFor(key, p, now)

	allowed := lim.AllowN(now, 1)

	tokens := int(lim.TokensAt(now))
	if tokens < 0 {
		tokens = 0
	}

	perToken := time.Duration(float64(time.Second) / float64(lim.Limit()))
	resetAt := now.Add(perToken)
	if allowed {
		return domain.Result{Allowed: true, Remaining: tokens, ResetAt: resetAt}
	}
	return domain.Result{Allowed: false, Remaining: 0, ResetAt: resetAt}
}

func (s *SmoothStore) limiterFor(key domain.Key, p domain.Policy, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	rps := float64(p.Limit) / p.Window.Seconds()
	lim := rate.NewLimiter(rate.Limit(rps), p.Limit)
	s.entries[key] = &smoothEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *SmoothStore) Reset(key domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *SmoothStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[domain.Key]*smoothEntry)
}

// Cleanup remove chaves inativas há mais de idleTTL.
func (s *SmoothStore) Cleanup() {
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *SmoothStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

var _ domain.Checker = (*SmoothStore)(nil)

package infra

import (
	"sync"
	"time"

	"edge-gatekeeper/middleware/ratelimit/domain"
)

// WindowStore é uma implementação de infra baseada em janela fixa:
// um contador por chave que zera quando a janela expira.
//
// Uma entrada nunca é mutada depois de expirada: na virada da janela ela é
// substituída por uma nova. Requisições negadas não consomem saldo nem
// estendem a janela.
//
// O estado vive em memória e pertence exclusivamente a este store; com mais
// de uma instância do processo cada réplica tem um mapa independente (para
// coordenação entre réplicas seria necessário um storage central, fora do
// escopo deste módulo).
type WindowStore struct {
	mu         sync.Mutex
	entries    map[domain.Key]*windowEntry
	clock      domain.Clock
	sweepEvery time.Duration
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

type WindowOption func(*WindowStore)

// WithClock injeta o relógio usado nas decisões (testes controlam o tempo).
func WithClock(c domain.Clock) WindowOption {
	return func(s *WindowStore) { s.clock = c }
}

func WithSweepEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.sweepEvery = d }
}

func NewWindowStore(opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:    make(map[domain.Key]*windowEntry),
		clock:      domain.ClockFunc(time.Now),
		sweepEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) SweepEvery() time.Duration { return s.sweepEvery }

// Check implementa domain.Checker.
//
// Fronteira da janela: uma requisição que chega exatamente em resetAt já
// pertence à janela nova (expiração é inclusiva no lado "expirado").
func (s *WindowStore) Check(key domain.Key, p domain.Policy) domain.Result {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !now.Before(ent.resetAt) {
		// primeira requisição ou janela expirada: entrada nova
		ent = &windowEntry{count: 1, resetAt: now.Add(p.Window)}
		s.entries[key] = ent
		return domain.Result{Allowed: true, Remaining: p.Limit - 1, ResetAt: ent.resetAt}
	}

	if ent.count >= p.Limit {
		return domain.Result{Allowed: false, Remaining: 0, ResetAt: ent.resetAt}
	}

	ent.count++
	return domain.Result{Allowed: true, Remaining: p.Limit - ent.count, ResetAt: ent.resetAt}
}

// Reset descarta o estado da chave incondicionalmente.
func (s *WindowStore) Reset(key domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear esvazia o store inteiro.
func (s *WindowStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[domain.Key]*windowEntry)
}

// Sweep remove entradas cuja janela já expirou, limitando o crescimento de
// memória com identificadores abandonados.
func (s *WindowStore) Sweep() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !now.Before(ent.resetAt) {
			delete(s.entries, k)
		}
	}
}

// Len retorna o número de entradas vivas (inclui expiradas ainda não varridas).
func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor inicia uma goroutine que varre entradas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	if s.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(s.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}

var _ domain.Checker = (*WindowStore)(nil)

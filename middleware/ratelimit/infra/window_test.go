package infra

import (
	"testing"
	"time"

	"edge-gatekeeper/middleware/ratelimit/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func testPolicy() domain.Policy {
	return domain.Policy{Name: "test", Limit: 5, Window: time.Hour}
}

func TestWindowStore_AdmitsUntilLimitWithDecreasingRemaining(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewWindowStore(WithClock(clock))
	p := testPolicy()

	for i, want := range []int{4, 3, 2, 1, 0} {
		res := s.Check("client", p)
		if !res.Allowed {
			t.Fatalf("expected call %d to be allowed", i+1)
		}
		if res.Remaining != want {
			t.Fatalf("expected remaining=%d on call %d, got %d", want, i+1, res.Remaining)
		}
	}

	res := s.Check("client", p)
	if res.Allowed {
		t.Fatalf("expected 6th call to be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected remaining=0 when denied, got %d", res.Remaining)
	}
	if want := clock.now.Add(p.Window); !res.ResetAt.Equal(want) {
		t.Fatalf("expected resetAt=%s, got %s", want, res.ResetAt)
	}
}

func TestWindowStore_RolloverStartsFreshWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewWindowStore(WithClock(clock))
	p := testPolicy()

	for i := 0; i < p.Limit+1; i++ {
		s.Check("client", p)
	}

	clock.advance(p.Window + time.Millisecond)

	res := s.Check("client", p)
	if !res.Allowed {
		t.Fatalf("expected allow after rollover")
	}
	if res.Remaining != p.Limit-1 {
		t.Fatalf("expected remaining=%d after rollover, got %d", p.Limit-1, res.Remaining)
	}
}

func TestWindowStore_ExactResetInstantStartsNewWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewWindowStore(WithClock(clock))
	p := testPolicy()

	first := s.Check("client", p)

	// exatamente em resetAt a janela anterior já não vale
	clock.now = first.ResetAt

	res := s.Check("client", p)
	if !res.Allowed || res.Remaining != p.Limit-1 {
		t.Fatalf("expected fresh window at exact reset instant, got allowed=%v remaining=%d", res.Allowed, res.Remaining)
	}
}

func TestWindowStore_DenialDoesNotConsumeNorExtend(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewWindowStore(WithClock(clock))
	p := testPolicy()

	for i := 0; i < p.Limit; i++ {
		s.Check("client", p)
	}

	first := s.Check("client", p)
	clock.advance(time.Minute)
	second := s.Check("client", p)

	if second.Allowed {
		t.Fatalf("expected denial to persist inside the window")
	}
	if second.Remaining != 0 {
		t.Fatalf("expected remaining to stay at 0, got %d", second.Remaining)
	}
	if !second.ResetAt.Equal(first.ResetAt) {
		t.Fatalf("expected resetAt unchanged by denials: %s != %s", second.ResetAt, first.ResetAt)
	}
}

func TestWindowStore_ResetDropsOnlyThatKey(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewWindowStore(WithClock(clock))
	p := testPolicy()

	s.Check("a", p)
	s.Check("b", p)

	s.Reset("a")

	if res := s.Check("a", p); res.Remaining != p.Limit-1 {
		t.Fatalf("expected key a to start fresh after reset, got remaining=%d", res.Remaining)
	}
	if res := s.Check("b", p); res.Remaining != p.Limit-2 {
		t.Fatalf("expected key b untouched, got remaining=%d", res.Remaining)
	}
}

func TestWindowStore_ClearEmptiesStore(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewWindowStore(WithClock(clock))
	p := testPolicy()

	s.Check("a", p)
	s.Check("b", p)

	s.Clear()

	if s.Len() != 0 {
		t.Fatalf("expected empty store after Clear, got %d entries", s.Len())
	}
}

func TestWindowStore_SweepRemovesExpiredEntries(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewWindowStore(WithClock(clock))
	short := domain.Policy{Name: "short", Limit: 5, Window: time.Minute}
	long := domain.Policy{Name: "long", Limit: 5, Window: time.Hour}

	s.Check("short-lived", short)
	s.Check("long-lived", long)

	clock.advance(2 * time.Minute)
	s.Sweep()

	if s.Len() != 1 {
		t.Fatalf("expected only the live entry to survive the sweep, got %d", s.Len())
	}
}

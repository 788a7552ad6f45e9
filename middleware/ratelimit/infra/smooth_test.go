package infra

import (
	"testing"
	"time"

	"edge-gatekeeper/middleware/ratelimit/domain"
)

func TestSmoothStore_BurstUpToLimitThenDenies(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewSmoothStore(WithSmoothClock(clock))
	p := domain.Policy{Name: "tight", Limit: 2, Window: time.Hour}

	if res := s.Check("client", p); !res.Allowed {
		t.Fatalf("expected first check to be allowed")
	}
	if res := s.Check("client", p); !res.Allowed {
		t.Fatalf("expected second check to be allowed (burst = limit)")
	}
	if res := s.Check("client", p); res.Allowed {
		t.Fatalf("expected third immediate check to be denied")
	}
}

func TestSmoothStore_ResetRecreatesBucket(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewSmoothStore(WithSmoothClock(clock))
	p := domain.Policy{Name: "tight", Limit: 1, Window: time.Hour}

	s.Check("client", p)
	if res := s.Check("client", p); res.Allowed {
		t.Fatalf("expected exhaustion before reset")
	}

	s.Reset("client")

	if res := s.Check("client", p); !res.Allowed {
		t.Fatalf("expected fresh bucket after reset")
	}
}

func TestSmoothStore_CleanupRemovesIdleEntries(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := NewSmoothStore(WithSmoothClock(clock), WithIdleTTL(time.Minute), WithCleanupEvery(0))
	p := domain.Policy{Name: "tight", Limit: 1, Window: time.Hour}

	s.Check("client", p)
	if res := s.Check("client", p); res.Allowed {
		t.Fatalf("expected exhaustion before cleanup")
	}

	clock.advance(2 * time.Minute)
	s.Cleanup()

	if res := s.Check("client", p); !res.Allowed {
		t.Fatalf("expected bucket recreated after idle cleanup")
	}
}

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIdentifier_PrefersTrustedProxyHeader(t *testing.T) {
	fn := ClientIdentifier(DefaultTrustedIPHeader)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("CF-Connecting-IP", "203.0.113.7")
	r.Header.Set("X-Real-IP", "198.51.100.1")
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.6.6")

	if got := fn(r); got != "203.0.113.7" {
		t.Fatalf("expected trusted proxy ip, got %q", got)
	}
}

func TestClientIdentifier_FallsBackToRealIP(t *testing.T) {
	fn := ClientIdentifier(DefaultTrustedIPHeader)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.1")
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.6.6")

	if got := fn(r); got != "198.51.100.1" {
		t.Fatalf("expected real-ip header, got %q", got)
	}
}

func TestClientIdentifier_UsesFirstForwardedForHop(t *testing.T) {
	fn := ClientIdentifier(DefaultTrustedIPHeader)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.6.6")

	if got := fn(r); got != "1.2.3.4" {
		t.Fatalf("expected first XFF hop, got %q", got)
	}
}

func TestClientIdentifier_SentinelWhenNoHeaders(t *testing.T) {
	fn := ClientIdentifier(DefaultTrustedIPHeader)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)

	if got := fn(r); got != UnknownIdentifier {
		t.Fatalf("expected %q, got %q", UnknownIdentifier, got)
	}
}

func TestClientIdentifier_CustomTrustedHeader(t *testing.T) {
	fn := ClientIdentifier("X-Edge-Client-IP")

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("X-Edge-Client-IP", " 203.0.113.9 ")
	r.Header.Set("CF-Connecting-IP", "198.51.100.1")

	if got := fn(r); got != "203.0.113.9" {
		t.Fatalf("expected configured trusted header value, got %q", got)
	}
}

package session

import "testing"

func TestPolicy_ProtectedPathWithoutSessionRedirectsToLogin(t *testing.T) {
	p := DefaultPolicy()

	out := p.Evaluate("/admin/projects", false)
	if out.Kind != RedirectToLogin {
		t.Fatalf("expected redirect to login, got %v", out.Kind)
	}
	if out.Location != "/admin/login?redirect=%2Fadmin%2Fprojects" {
		t.Fatalf("expected original path in redirect param, got %q", out.Location)
	}
}

func TestPolicy_AuthPageWithoutSessionPasses(t *testing.T) {
	p := DefaultPolicy()

	if out := p.Evaluate("/admin/login", false); out.Kind != Pass {
		t.Fatalf("expected login page to render without session, got %v", out.Kind)
	}
	if out := p.Evaluate("/admin/signup", false); out.Kind != Pass {
		t.Fatalf("expected signup page to render without session, got %v", out.Kind)
	}
}

func TestPolicy_AuthPageWithSessionRedirectsToLanding(t *testing.T) {
	p := DefaultPolicy()

	out := p.Evaluate("/admin/login", true)
	if out.Kind != RedirectToLanding {
		t.Fatalf("expected redirect away from auth page, got %v", out.Kind)
	}
	if out.Location != "/admin" {
		t.Fatalf("expected landing path, got %q", out.Location)
	}
}

func TestPolicy_ProtectedPathWithSessionPasses(t *testing.T) {
	p := DefaultPolicy()

	if out := p.Evaluate("/admin/projects", true); out.Kind != Pass {
		t.Fatalf("expected authenticated pass-through, got %v", out.Kind)
	}
}

func TestPolicy_OutsidePrefixAlwaysPasses(t *testing.T) {
	p := DefaultPolicy()

	for _, path := range []string{"/", "/blog/some-post", "/projects"} {
		if out := p.Evaluate(path, false); out.Kind != Pass {
			t.Fatalf("expected %q to pass without session, got %v", path, out.Kind)
		}
		if out := p.Evaluate(path, true); out.Kind != Pass {
			t.Fatalf("expected %q to pass with session, got %v", path, out.Kind)
		}
	}
}

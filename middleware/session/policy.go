package session

import (
	"net/url"
	"strings"
)

// Policy é a tabela que governa rotas protegidas: um prefixo exige sessão,
// exceto as páginas de autenticação, que invertem a regra (usuário logado é
// mandado embora delas).
type Policy struct {
	// ProtectedPrefix é o namespace protegido (ex: "/admin").
	ProtectedPrefix string
	// AuthPages são as exceções dentro do prefixo (login/cadastro).
	AuthPages map[string]struct{}
	// LoginPath recebe os não autenticados, com o caminho original em
	// RedirectParam.
	LoginPath     string
	RedirectParam string
	// LandingPath recebe autenticados que tentam rever páginas de auth.
	LandingPath string
}

// DefaultPolicy reflete a área administrativa padrão.
func DefaultPolicy() Policy {
	return Policy{
		ProtectedPrefix: "/admin",
		AuthPages: map[string]struct{}{
			"/admin/login":  {},
			"/admin/signup": {},
		},
		LoginPath:     "/admin/login",
		RedirectParam: "redirect",
		LandingPath:   "/admin",
	}
}

// OutcomeKind enumera os desfechos terminais da avaliação.
type OutcomeKind int

const (
	// Pass deixa a requisição seguir para o handler.
	Pass OutcomeKind = iota
	// RedirectToLogin manda o não autenticado para a página de login.
	RedirectToLogin
	// RedirectToLanding manda o autenticado para fora das páginas de auth.
	RedirectToLanding
)

type Outcome struct {
	Kind OutcomeKind
	// Location é o destino do redirect; vazio quando Kind == Pass.
	Location string
}

// Evaluate decide o desfecho para {caminho, temSessão}. Sem estado entre
// requisições; os desfechos são terminais (não há loop de retry).
func (p Policy) Evaluate(path string, hasSession bool) Outcome {
	if !strings.HasPrefix(path, p.ProtectedPrefix) {
		return Outcome{Kind: Pass}
	}

	_, isAuthPage := p.AuthPages[path]

	switch {
	case !hasSession && !isAuthPage:
		q := url.Values{}
		q.Set(p.RedirectParam, path)
		return Outcome{
			Kind:     RedirectToLogin,
			Location: p.LoginPath + "?" + q.Encode(),
		}
	case hasSession && isAuthPage:
		return Outcome{Kind: RedirectToLanding, Location: p.LandingPath}
	default:
		return Outcome{Kind: Pass}
	}
}

package session

import (
	"context"
	"net/http"
	"time"
)

// Session é o estado de autenticação resolvido para uma requisição.
// O gatekeeper só lê; criação e destruição pertencem ao provedor de identidade.
type Session struct {
	UserID       string
	ExpiresAt    time.Time
	RefreshToken string
}

// Provider valida (e se necessário renova) a sessão a partir dos cookies da
// requisição.
//
// O retorno de cookies são diretivas que o chamador DEVE aplicar à resposta
// (rotação de tokens, remoção de cookies inválidos). O provider nunca escreve
// na resposta diretamente.
//
// Concorrência: duas requisições quase simultâneas do mesmo navegador podem
// ambas observar a sessão vencida e disparar refresh; o provedor de identidade
// precisa tolerar refresh duplicado (contrato externo); o guard não faz
// locking próprio.
type Provider interface {
	Resolve(ctx context.Context, cookies []*http.Cookie) (*Session, []*http.Cookie, error)
}

type ctxKey struct{}

// WithSession anexa a sessão ao contexto da requisição.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext recupera a sessão anexada pelo Guard, se houver.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

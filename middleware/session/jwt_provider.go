package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Grant é o par de tokens emitido pelo provedor de identidade em um refresh.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Refresher troca um refresh token por um grant novo junto ao provedor de
// identidade. A chamada precisa ser idempotente/segura sob corrida (duas
// requisições podem renovar quase ao mesmo tempo).
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Grant, error)
}

// CookieProvider implementa Provider sobre cookies de sessão portando JWTs
// assinados (HS256) pelo provedor de identidade.
//
// Token de acesso válido resolve localmente, sem rede. Vencido, o provider
// tenta o refresh e devolve os cookies rotacionados como diretivas. Token
// inválido (assinatura, formato) vira sessão ausente com diretivas de limpeza.
type CookieProvider struct {
	Secret        []byte
	AccessCookie  string
	RefreshCookie string
	Refresher     Refresher

	CookiePath   string
	CookieSecure bool
	// RefreshTTL é a vida do cookie de refresh gravado após rotação.
	RefreshTTL time.Duration

	Logger *slog.Logger
}

const (
	DefaultAccessCookie  = "gk-access-token"
	DefaultRefreshCookie = "gk-refresh-token"

	defaultRefreshTTL = 30 * 24 * time.Hour
)

func (p *CookieProvider) accessCookie() string {
	if p.AccessCookie != "" {
		return p.AccessCookie
	}
	return DefaultAccessCookie
}

func (p *CookieProvider) refreshCookie() string {
	if p.RefreshCookie != "" {
		return p.RefreshCookie
	}
	return DefaultRefreshCookie
}

func (p *CookieProvider) refreshTTL() time.Duration {
	if p.RefreshTTL > 0 {
		return p.RefreshTTL
	}
	return defaultRefreshTTL
}

// Resolve implementa Provider.
func (p *CookieProvider) Resolve(ctx context.Context, cookies []*http.Cookie) (*Session, []*http.Cookie, error) {
	access := cookieValue(cookies, p.accessCookie())
	refresh := cookieValue(cookies, p.refreshCookie())

	if access == "" {
		if refresh == "" {
			return nil, nil, nil
		}
		return p.tryRefresh(ctx, refresh)
	}

	sess, err := p.parseAccess(access)
	if err == nil {
		sess.RefreshToken = refresh
		return sess, nil, nil
	}

	if errors.Is(err, jwt.ErrTokenExpired) && refresh != "" {
		return p.tryRefresh(ctx, refresh)
	}

	// assinatura errada, formato quebrado etc: sessão ausente + limpeza
	if p.Logger != nil {
		p.Logger.Warn("invalid access token cookie", "error", err)
	}
	return nil, p.clearDirectives(), nil
}

func (p *CookieProvider) tryRefresh(ctx context.Context, refreshToken string) (*Session, []*http.Cookie, error) {
	if p.Refresher == nil {
		return nil, p.clearDirectives(), nil
	}

	grant, err := p.Refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh session: %w", err)
	}

	sess, err := p.parseAccess(grant.AccessToken)
	if err != nil {
		return nil, p.clearDirectives(), fmt.Errorf("refreshed token rejected: %w", err)
	}
	sess.RefreshToken = grant.RefreshToken

	return sess, p.rotateDirectives(grant), nil
}

func (p *CookieProvider) parseAccess(token string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	sess := &Session{UserID: claims.Subject}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// rotateDirectives materializa a rotação de tokens como Set-Cookie explícitos.
func (p *CookieProvider) rotateDirectives(grant *Grant) []*http.Cookie {
	return []*http.Cookie{
		{
			Name:     p.accessCookie(),
			Value:    grant.AccessToken,
			Path:     p.cookiePath(),
			Expires:  grant.ExpiresAt,
			HttpOnly: true,
			Secure:   p.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     p.refreshCookie(),
			Value:    grant.RefreshToken,
			Path:     p.cookiePath(),
			Expires:  time.Now().Add(p.refreshTTL()),
			HttpOnly: true,
			Secure:   p.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

func (p *CookieProvider) clearDirectives() []*http.Cookie {
	expire := func(name string) *http.Cookie {
		return &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     p.cookiePath(),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   p.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		}
	}
	return []*http.Cookie{expire(p.accessCookie()), expire(p.refreshCookie())}
}

func (p *CookieProvider) cookiePath() string {
	if p.CookiePath != "" {
		return p.CookiePath
	}
	return "/"
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

var _ Provider = (*CookieProvider)(nil)

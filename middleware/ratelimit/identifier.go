package ratelimit

import (
	"net/http"
	"strings"
)

// IdentifierFunc resolve o identificador estável do cliente usado como chave
// de admissão.
type IdentifierFunc func(r *http.Request) string

const (
	// DefaultTrustedIPHeader é o header de proxy de borda com o IP original
	// do cliente. Qual header é de fato confiável depende da topologia de
	// deployment, por isso ele é configurável e não fixo.
	DefaultTrustedIPHeader = "CF-Connecting-IP"

	headerRealIP       = "X-Real-IP"
	headerForwardedFor = "X-Forwarded-For"

	// UnknownIdentifier é a sentinela usada quando nenhum header está presente.
	UnknownIdentifier = "unknown"
)

// ClientIdentifier monta a resolução com precedência fixa: header de proxy
// confiável, depois X-Real-IP, depois o primeiro salto do X-Forwarded-For,
// depois a sentinela.
//
// O primeiro salto do XFF é o mais próximo do cliente, mas é controlável pelo
// atacante quando nenhum proxy confiável termina a cadeia; em topologias sem
// proxy de borda o identificador é forjável.
func ClientIdentifier(trustedHeader string) IdentifierFunc {
	return func(r *http.Request) string {
		if trustedHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(trustedHeader)); v != "" {
				return v
			}
		}

		if v := strings.TrimSpace(r.Header.Get(headerRealIP)); v != "" {
			return v
		}

		if xff := r.Header.Get(headerForwardedFor); xff != "" {
			first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
			if first != "" {
				return first
			}
		}

		return UnknownIdentifier
	}
}

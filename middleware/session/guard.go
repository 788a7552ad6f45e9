package session

import (
	"log/slog"
	"net/http"

	"edge-gatekeeper/middleware/envelope"
)

type GuardOptions struct {
	Provider Provider
	Policy   Policy
	Logger   *slog.Logger
}

// Guard intercepta toda requisição antes dos handlers de página: resolve a
// sessão, reescreve cookies rotacionados na resposta e aplica a Policy.
//
// Os Set-Cookie vão na resposta desta passada, seja ela redirect ou
// pass-through; a reescrita antes de qualquer WriteHeader é o que garante que
// a rotação chega ao cliente.
//
// Falha do provedor nunca é fatal: vira sessão ausente, com log.
func Guard(opts GuardOptions) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, directives, err := opts.Provider.Resolve(r.Context(), r.Cookies())
			if err != nil {
				if opts.Logger != nil {
					opts.Logger.Warn("session resolve failed",
						"path", r.URL.Path,
						"error", err)
				}
				sess = nil
			}

			for _, c := range directives {
				http.SetCookie(w, c)
			}

			out := opts.Policy.Evaluate(r.URL.Path, sess != nil)
			if out.Kind != Pass {
				http.Redirect(w, r, out.Location, http.StatusFound)
				return
			}

			if sess != nil {
				r = r.WithContext(WithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession é a variante para rotas de API: sem sessão responde 401 em
// envelope, nunca redirect. Pressupõe o Guard montado antes na cadeia.
func RequireSession(respond *envelope.Writer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				respond.WriteError(w, r, "Authentication required", http.StatusUnauthorized, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

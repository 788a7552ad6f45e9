package envelope

import "net/http"

// Constantes de header no estilo de um gateway de borda: nomes e valores
// fixos, independentes de endpoint.
const (
	headerOrigin      = "Origin"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"

	headerAllowOrigin  = "Access-Control-Allow-Origin"
	headerAllowMethods = "Access-Control-Allow-Methods"
	headerAllowHeaders = "Access-Control-Allow-Headers"
	headerMaxAge       = "Access-Control-Max-Age"

	allowMethodsValue = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeadersValue = "Content-Type, Authorization"
	maxAgeValue       = "86400" // 24h

	headerContentTypeOptions = "X-Content-Type-Options"
	headerFrameOptions       = "X-Frame-Options"
	headerXSSProtection      = "X-XSS-Protection"
	headerReferrerPolicy     = "Referrer-Policy"
	headerPermissionsPolicy  = "Permissions-Policy"
)

// ResolveOrigin aplica a allow-list: se a origem da requisição está na lista,
// ela é ecoada; caso contrário cai no primeiro item configurado. Nunca
// wildcard, nunca reflexo de origem arbitrária.
func (w *Writer) ResolveOrigin(origin string) string {
	for _, allowed := range w.AllowedOrigins {
		if origin != "" && origin == allowed {
			return origin
		}
	}
	if len(w.AllowedOrigins) > 0 {
		return w.AllowedOrigins[0]
	}
	return ""
}

// ApplyHeaders anexa os headers de CORS e de segurança a uma resposta.
func (w *Writer) ApplyHeaders(h http.Header, origin string) {
	if resolved := w.ResolveOrigin(origin); resolved != "" {
		h.Set(headerAllowOrigin, resolved)
	}
	h.Set(headerAllowMethods, allowMethodsValue)
	h.Set(headerAllowHeaders, allowHeadersValue)
	h.Set(headerMaxAge, maxAgeValue)

	h.Set(headerContentTypeOptions, "nosniff")
	h.Set(headerFrameOptions, "DENY")
	h.Set(headerXSSProtection, "1; mode=block")
	h.Set(headerReferrerPolicy, "strict-origin-when-cross-origin")
	h.Set(headerPermissionsPolicy, "geolocation=(), microphone=(), camera=()")
}

// WritePreflight responde um OPTIONS de preflight: 204, sem corpo, com os
// mesmos headers de CORS/segurança das demais respostas.
func (w *Writer) WritePreflight(rw http.ResponseWriter, r *http.Request) {
	w.ApplyHeaders(rw.Header(), r.Header.Get(headerOrigin))
	rw.WriteHeader(http.StatusNoContent)
}

// Preflight é o middleware que intercepta OPTIONS antes do roteamento.
func Preflight(w *Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WritePreflight(rw, r)
				return
			}
			next.ServeHTTP(rw, r)
		})
	}
}

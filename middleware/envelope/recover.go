package envelope

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Recover garante que nenhum pânico escape cru para a camada de transporte:
// tudo termina em um envelope 500 sanitizado. O detalhe real vai para o log.
func Recover(w *Writer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				if logger != nil {
					logger.Error("handler panic",
						"method", r.Method,
						"path", r.URL.Path,
						"error", err)
				}
				w.WriteError(rw, r, w.Sanitize(err), http.StatusInternalServerError, err.Error())
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

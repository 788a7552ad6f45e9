package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edge-gatekeeper/middleware/envelope"
)

// Upstream de exemplo para rodar atrás do gatekeeper: expõe o endpoint de
// contato validado e responde tudo em envelope.
func main() {
	respond := &envelope.Writer{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		Disclosure:     envelope.DiscloseAll,
	}
	validate := envelope.NewValidator()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respond.WriteSuccess(w, r, map[string]string{"status": "ok"}, "", http.StatusOK)
	})
	mux.HandleFunc("POST /api/contact", func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteError(w, r, "Invalid JSON in request body", http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respond.WriteValidationError(w, r, err)
			return
		}
		respond.WriteSuccess(w, r, nil, "Message received", http.StatusCreated)
	})

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Regras do formulário de contato: nome 2-100, email válido, mensagem 10-5000.
type contactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

package envelope

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// Disclosure controla quanto detalhe de erro chega ao cliente.
type Disclosure int

const (
	// DiscloseSanitized é o modo de produção: detalhes nunca saem no corpo e
	// mensagens de erro inesperado colapsam em uma mensagem genérica.
	DiscloseSanitized Disclosure = iota
	// DiscloseAll é o modo de desenvolvimento: mensagens reais e details.
	DiscloseAll
)

const genericErrorMessage = "An unexpected error occurred"

// Success é o formato de resposta 2xx.
type Success struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Error é o formato de resposta 4xx/5xx.
type Error struct {
	Err       string `json:"error"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SafeError é um erro cuja mensagem pode ser exibida ao cliente mesmo em
// produção (ex.: falha de validação de entrada).
type SafeError struct {
	Message string
}

func (e *SafeError) Error() string { return e.Message }

// Writer emite envelopes com headers de CORS/segurança já aplicados.
//
// AllowedOrigins é a allow-list de CORS; a primeira entrada é o fallback
// usado quando a origem da requisição não está na lista.
type Writer struct {
	AllowedOrigins []string
	Disclosure     Disclosure
	// Now permite injetar o relógio nos testes. Se nil, usa time.Now.
	Now func() time.Time
}

func (w *Writer) timestamp() string {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// WriteSuccess emite o envelope de sucesso com o status dado.
func (w *Writer) WriteSuccess(rw http.ResponseWriter, r *http.Request, data any, message string, status int) {
	if status == 0 {
		status = http.StatusOK
	}
	w.ApplyHeaders(rw.Header(), r.Header.Get(headerOrigin))
	writeJSON(rw, status, Success{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: w.timestamp(),
	})
}

// WriteError emite o envelope de erro.
// details só entra no corpo sob DiscloseAll; em produção é descartado.
func (w *Writer) WriteError(rw http.ResponseWriter, r *http.Request, message string, status int, details any) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	body := Error{Err: message, Timestamp: w.timestamp()}
	if w.Disclosure == DiscloseAll && details != nil {
		body.Details = details
	}
	w.ApplyHeaders(rw.Header(), r.Header.Get(headerOrigin))
	writeJSON(rw, status, body)
}

// WriteValidationError traduz uma falha de validação em 400 com a primeira
// violação no formato "<campo>: <mensagem>". Apenas a primeira violação é
// exposta; em desenvolvimento a lista completa vai em details.
func (w *Writer) WriteValidationError(rw http.ResponseWriter, r *http.Request, err error) {
	message := "Validation failed"
	var details any

	var verr validator.ValidationErrors
	if errors.As(err, &verr) && len(verr) > 0 {
		message = FirstViolation(verr)
		details = AllViolations(verr)
	}

	w.WriteError(rw, r, message, http.StatusBadRequest, details)
}

// Sanitize converte um erro qualquer na mensagem que pode ir ao cliente.
//
// Em desenvolvimento a mensagem real é exposta. Em produção, apenas erros de
// validação atravessam; todo o resto colapsa na mensagem genérica, evitando
// vazamento de detalhe interno.
func (w *Writer) Sanitize(err error) string {
	if err == nil {
		return genericErrorMessage
	}
	if w.Disclosure == DiscloseAll {
		return err.Error()
	}

	var safe *SafeError
	if errors.As(err, &safe) {
		return safe.Message
	}
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		return "Invalid input data"
	}
	return genericErrorMessage
}

func writeJSON(rw http.ResponseWriter, status int, body any) {
	rw.Header().Set(headerContentType, contentTypeJSON)
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(body)
}

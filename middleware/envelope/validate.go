package envelope

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator cria um validador que reporta violações usando o nome JSON dos
// campos (e não o nome do campo da struct Go).
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FirstViolation formata a primeira violação como "<campo.caminho>: <mensagem>".
// Só a primeira chega ao cliente; o restante vai em details quando habilitado.
func FirstViolation(verr validator.ValidationErrors) string {
	if len(verr) == 0 {
		return "Validation failed"
	}
	fe := verr[0]
	return fieldPath(fe) + ": " + violationMessage(fe)
}

// AllViolations formata todas as violações (uso em details, só em dev).
func AllViolations(verr validator.ValidationErrors) []string {
	out := make([]string, 0, len(verr))
	for _, fe := range verr {
		out = append(out, fieldPath(fe)+": "+violationMessage(fe))
	}
	return out
}

// fieldPath descarta o nome da struct raiz, mantendo o caminho de campos
// aninhados: "ContactRequest.email" -> "email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "url":
		return "Invalid URL"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be less than %s characters", fe.Param())
	default:
		return fmt.Sprintf("Invalid value (%s)", fe.Tag())
	}
}

package billing

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jhoicas/facturas-api/internal/domain"
)

// Códigos estables de error del endpoint PDF.
const (
	CodeInvalidID          = "INVALID_INVOICE_ID"
	CodeTimeout            = "PDF_TIMEOUT"
	CodeMemory             = "PDF_MEMORY_ERROR"
	CodeServiceUnavailable = "PDF_SERVICE_UNAVAILABLE"
	CodeNotFound           = "INVOICE_NOT_FOUND"
	CodeValidation         = "PDF_VALIDATION_ERROR"
	CodeGeneration         = "PDF_GENERATION_ERROR"
)

// Failure clasificación de un error del pipeline para la respuesta HTTP.
type Failure struct {
	Status  int
	Code    string
	Message string // localizado (fr) para el usuario final
}

type rule struct {
	failure  Failure
	sentinel []error
	keywords []string
}

// El orden importa: gana la primera regla que coincide.
var rules = []rule{
	{
		failure:  Failure{http.StatusGatewayTimeout, CodeTimeout, "La génération du PDF a pris trop de temps. Veuillez réessayer."},
		sentinel: []error{domain.ErrRenderTimeout, context.DeadlineExceeded},
		keywords: []string{"timeout", "timed out", "deadline exceeded"},
	},
	{
		failure:  Failure{http.StatusInsufficientStorage, CodeMemory, "Mémoire insuffisante pour générer le PDF."},
		sentinel: []error{domain.ErrResourceExhausted},
		keywords: []string{"out of memory", "cannot allocate memory", "enomem", "memoria insuficiente"},
	},
	{
		failure:  Failure{http.StatusServiceUnavailable, CodeServiceUnavailable, "Le service de génération PDF est temporairement indisponible."},
		sentinel: []error{domain.ErrRenderUnavailable},
		keywords: []string{"connection refused", "failed to launch", "service unavailable", "no disponible"},
	},
	{
		failure:  Failure{http.StatusNotFound, CodeNotFound, "Facture introuvable."},
		sentinel: []error{domain.ErrNotFound},
		keywords: []string{"not found", "no encontrad"},
	},
	{
		failure:  Failure{http.StatusUnprocessableEntity, CodeValidation, "Le PDF généré est invalide ou corrompu."},
		sentinel: []error{domain.ErrInvalidDocument},
		keywords: []string{"empty", "corrupt", "vacío", "corrupto", "formato inválido"},
	},
}

var (
	invalidIDFailure = Failure{http.StatusBadRequest, CodeInvalidID, "Identifiant de facture invalide."}
	defaultFailure   = Failure{http.StatusInternalServerError, CodeGeneration, "Erreur lors de la génération du PDF."}
)

// ClassifyError traduce un error del pipeline a estado HTTP, código y mensaje.
// Cada regla compara los errores centinela y después el texto del error, para
// clasificar también errores opacos del motor de renderizado.
func ClassifyError(err error) Failure {
	if err == nil {
		return defaultFailure
	}
	if errors.Is(err, domain.ErrInvalidID) {
		return invalidIDFailure
	}
	text := strings.ToLower(err.Error())
	for _, r := range rules {
		if r.matches(err, text) {
			return r.failure
		}
	}
	return defaultFailure
}

func (r rule) matches(err error, text string) bool {
	for _, s := range r.sentinel {
		if errors.Is(err, s) {
			return true
		}
	}
	for _, k := range r.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

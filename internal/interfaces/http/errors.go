package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/domain"
)

// Códigos estables de las rutas CRUD.
const (
	CodeInvalidBody        = "INVALID_BODY"
	CodeValidation         = "VALIDATION"
	CodeInvalidID          = "INVALID_INVOICE_ID"
	CodeNotFound           = "INVOICE_NOT_FOUND"
	CodeDuplicate          = "DUPLICATE_INVOICE"
	CodeSequenceCorrupted  = "SEQUENCE_CORRUPTED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

func errorJSON(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Details:   details,
	})
}

// writeDomainError traduce los errores de dominio de las rutas CRUD.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidID, "Identifiant de facture invalide.", nil)
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "Données de facture invalides.", nil)
	case errors.Is(err, domain.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, CodeNotFound, "Facture introuvable.", nil)
	case errors.Is(err, domain.ErrDuplicate):
		return errorJSON(c, fiber.StatusConflict, CodeDuplicate, "Numéro de facture déjà utilisé, veuillez réessayer.", nil)
	case errors.Is(err, domain.ErrSequenceCorrupted):
		return errorJSON(c, fiber.StatusConflict, CodeSequenceCorrupted, "La numérotation des factures est corrompue.", nil)
	}
	return err
}

// ErrorHandler manejador final de fiber: ningún error sale sin el formato JSON común.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return errorJSON(c, fe.Code, CodeRouteNotFound, "Ressource introuvable.", nil)
			case fiber.StatusServiceUnavailable:
				return errorJSON(c, fe.Code, CodeServiceUnavailable, "Service indisponible.", nil)
			}
			return errorJSON(c, fe.Code, CodeInternal, fe.Message, nil)
		}
		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", GetRequestID(c)).
			Msg("error no controlado")
		return errorJSON(c, fiber.StatusInternalServerError, CodeInternal, "Erreur interne du serveur.", nil)
	}
}

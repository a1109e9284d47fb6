package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")

	// ErrInvalidID el identificador no tiene el formato del almacén (24 hex).
	ErrInvalidID = errors.New("identificador de factura inválido")
	// ErrSequenceCorrupted el número de la última factura no sigue el patrón BCC###.
	ErrSequenceCorrupted = errors.New("numeración de facturas corrupta")

	// Errores del pipeline de PDF.
	ErrRenderFailed      = errors.New("fallo en la generación del PDF")
	ErrRenderTimeout     = errors.New("timeout en la generación del PDF")
	ErrRenderUnavailable = errors.New("servicio de renderizado no disponible")
	ErrResourceExhausted = errors.New("memoria insuficiente para renderizar")
	ErrInvalidDocument   = errors.New("documento PDF inválido")
)

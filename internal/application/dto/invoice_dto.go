package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea de factura en el body.
type InvoiceItemRequest struct {
	Designation string `json:"designation" validate:"required"`
	Quantity    Amount `json:"quantity"`
	UnitPrice   Amount `json:"unitPrice"`
	TotalPrice  Amount `json:"totalPrice"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// El número de factura y los totales los asigna el servidor.
type CreateInvoiceRequest struct {
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	ClientName    string               `json:"clientName" validate:"required"`
	ClientNumber  string               `json:"clientNumber" validate:"required"`
	ClientAddress string               `json:"clientAddress" validate:"required"`
	ClientTaxID   string               `json:"clientTaxId" validate:"required"`
	Timbre        *Amount              `json:"timbre,omitempty"`
	TotalRemise   *Amount              `json:"totalRemise,omitempty"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id.
// Campos vacíos (o items ausentes) conservan el valor almacenado.
type UpdateInvoiceRequest struct {
	Items         []InvoiceItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	ClientName    string               `json:"clientName,omitempty"`
	ClientNumber  string               `json:"clientNumber,omitempty"`
	ClientAddress string               `json:"clientAddress,omitempty"`
	ClientTaxID   string               `json:"clientTaxId,omitempty"`
	Timbre        *Amount              `json:"timbre,omitempty"`
	TotalRemise   *Amount              `json:"totalRemise,omitempty"`
}

// InvoiceItemResponse línea en las respuestas.
type InvoiceItemResponse struct {
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// InvoiceResponse factura completa.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber"`
	Items         []InvoiceItemResponse `json:"items"`
	TotalHT       decimal.Decimal       `json:"totalHT"`
	TotalTVA      decimal.Decimal       `json:"totalTVA"`
	Timbre        decimal.Decimal       `json:"timbre"`
	TotalRemise   decimal.Decimal       `json:"totalRemise"`
	TotalTTC      decimal.Decimal       `json:"totalTTC"`
	ClientName    string                `json:"clientName"`
	ClientNumber  string                `json:"clientNumber"`
	ClientAddress string                `json:"clientAddress"`
	ClientTaxID   string                `json:"clientTaxId"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

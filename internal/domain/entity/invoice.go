package entity

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceItem línea de factura. TotalPrice lo informa el cliente; no se deriva de Quantity×UnitPrice.
type InvoiceItem struct {
	Designation string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Invoice representa una factura (bon de commande) con sus totales ya calculados.
type Invoice struct {
	ID            string // 24 caracteres hex, compatible con ObjectID
	InvoiceNumber string // BCC001, BCC002, ... inmutable
	Items         []InvoiceItem
	TotalHT       decimal.Decimal
	TotalTVA      decimal.Decimal
	Timbre        decimal.Decimal
	TotalRemise   decimal.Decimal
	TotalTTC      decimal.Decimal
	ClientName    string
	ClientNumber  string
	ClientAddress string
	ClientTaxID   string // matricule fiscal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewInvoiceID genera un identificador nuevo con el formato del almacén.
func NewInvoiceID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID indica si s tiene el formato de identificador del almacén.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}

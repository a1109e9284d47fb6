// Package invoicing contiene los servicios de dominio de la factura:
// cálculo de totales y numeración secuencial.
package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

var (
	// TVARate tasa fija de TVA (19 %), no configurable por línea.
	TVARate = decimal.RequireFromString("0.19")
	// DefaultTimbre timbre fiscal aplicado cuando el cliente no lo informa.
	DefaultTimbre = decimal.RequireFromString("0.1")
)

// Totals totales derivados de una factura. Se persisten tal cual, sin redondeo.
type Totals struct {
	TotalHT     decimal.Decimal
	TotalTVA    decimal.Decimal
	Timbre      decimal.Decimal
	TotalRemise decimal.Decimal
	TotalTTC    decimal.Decimal
}

// CalculateTotals agrega los TotalPrice de las líneas y aplica TVA, timbre y remise.
// timbre y remise nil toman los valores por defecto (0.1 y 0).
//
//	TotalTTC = TotalHT + TotalHT×0.19 + Timbre − TotalRemise
func CalculateTotals(items []entity.InvoiceItem, timbre, remise *decimal.Decimal) Totals {
	ht := decimal.Zero
	for _, it := range items {
		ht = ht.Add(it.TotalPrice)
	}
	t := Totals{
		TotalHT:     ht,
		TotalTVA:    ht.Mul(TVARate),
		Timbre:      DefaultTimbre,
		TotalRemise: decimal.Zero,
	}
	if timbre != nil {
		t.Timbre = *timbre
	}
	if remise != nil {
		t.TotalRemise = *remise
	}
	t.TotalTTC = t.TotalHT.Add(t.TotalTVA).Add(t.Timbre).Sub(t.TotalRemise)
	return t
}

// Apply copia los totales sobre la factura.
func (t Totals) Apply(inv *entity.Invoice) {
	inv.TotalHT = t.TotalHT
	inv.TotalTVA = t.TotalTVA
	inv.Timbre = t.Timbre
	inv.TotalRemise = t.TotalRemise
	inv.TotalTTC = t.TotalTTC
}

package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount número decimal tolerante para los cuerpos JSON.
// Acepta números, strings numéricos ("12,5" incluido) y null; cualquier otro
// valor se degrada a cero con Valid=false en lugar de rechazar la petición.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount construye un Amount válido.
func NewAmount(d decimal.Decimal) Amount { return Amount{Value: d, Valid: true} }

// UnmarshalJSON implementa json.Unmarshaler sin devolver nunca error de formato.
func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	*a = NewAmount(v)
	return nil
}

// MarshalJSON serializa el valor como número JSON.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.String()), nil
}

// Ptr devuelve nil si el valor no es válido; útil para los parámetros opcionales del cálculo.
func (a *Amount) Ptr() *decimal.Decimal {
	if a == nil || !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

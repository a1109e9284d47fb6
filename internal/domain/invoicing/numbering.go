package invoicing

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// NumberPrefix prefijo fijo de los números de factura.
const NumberPrefix = "BCC"

var numberPattern = regexp.MustCompile(`^` + NumberPrefix + `(\d+)$`)

// NextInvoiceNumber deriva el siguiente número a partir de la última factura creada.
// Sin factura previa devuelve BCC001; BCC999 pasa a BCC1000.
// Si el número previo no sigue el patrón devuelve domain.ErrSequenceCorrupted:
// reiniciar en 1 colisionaría con números ya emitidos.
//
// Debe ejecutarse dentro de la sección serializada de creación (ver billing.InvoiceTxRunner).
func NextInvoiceNumber(last *entity.Invoice) (string, error) {
	if last == nil {
		return FormatInvoiceNumber(1), nil
	}
	m := numberPattern.FindStringSubmatch(last.InvoiceNumber)
	if m == nil {
		return "", fmt.Errorf("%w: %q", domain.ErrSequenceCorrupted, last.InvoiceNumber)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", domain.ErrSequenceCorrupted, last.InvoiceNumber, err)
	}
	return FormatInvoiceNumber(n + 1), nil
}

// FormatInvoiceNumber formatea n como BCC + entero con al menos 3 dígitos.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%s%03d", NumberPrefix, n)
}

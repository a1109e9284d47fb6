package billing

import (
	"context"
	"time"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta fn en una sección crítica serializada respecto a otras
// creaciones de factura. Dentro de fn la lectura de la última factura, el cálculo
// del siguiente número y la inserción son atómicos.
type InvoiceTxRunner interface {
	RunSerialized(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error
}

// RenderMeta datos de contexto que aparecen en el pie del documento.
type RenderMeta struct {
	Operator    string
	GeneratedAt time.Time
}

// InvoicePDFRenderer convierte una factura ya calculada en un PDF.
// Debe liberar todos sus recursos antes de retornar, también cuando ctx se cancela.
type InvoicePDFRenderer interface {
	RenderInvoice(ctx context.Context, invoice *entity.Invoice, meta RenderMeta) ([]byte, error)
}

// RenderObserver recibe métricas del pipeline de PDF.
type RenderObserver interface {
	ObserveRender(d time.Duration, size int)
	ObserveFailure(code string)
}

type nopObserver struct{}

func (nopObserver) ObserveRender(time.Duration, int) {}
func (nopObserver) ObserveFailure(string)            {}

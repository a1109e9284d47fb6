package pdf

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var _ billing.InvoicePDFRenderer = (*HTMLInvoiceRenderer)(nil)

// HTMLInvoiceRenderer compone el HTML de la factura y lo imprime con un BrowserEngine.
type HTMLInvoiceRenderer struct {
	engine  BrowserEngine
	company Company
}

// NewHTMLInvoiceRenderer construye el renderer.
func NewHTMLInvoiceRenderer(engine BrowserEngine, company Company) *HTMLInvoiceRenderer {
	return &HTMLInvoiceRenderer{engine: engine, company: company}
}

// RenderInvoice implementa billing.InvoicePDFRenderer.
func (r *HTMLInvoiceRenderer) RenderInvoice(ctx context.Context, inv *entity.Invoice, meta billing.RenderMeta) ([]byte, error) {
	doc, err := r.Compose(inv, meta)
	if err != nil {
		return nil, err
	}
	buf, err := r.engine.PrintPDF(ctx, doc)
	if err != nil {
		if errors.Is(err, domain.ErrRenderFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
	}
	return buf, nil
}

// Compose produce el documento HTML y el pie de página sin imprimir.
func (r *HTMLInvoiceRenderer) Compose(inv *entity.Invoice, meta billing.RenderMeta) (HTMLDocument, error) {
	var body, footer bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "invoice.html", newInvoiceView(r.company, inv)); err != nil {
		return HTMLDocument{}, fmt.Errorf("%w: plantilla de factura: %w", domain.ErrRenderFailed, err)
	}
	if err := templates.ExecuteTemplate(&footer, "footer.html", newFooterView(r.company, inv, meta)); err != nil {
		return HTMLDocument{}, fmt.Errorf("%w: plantilla de pie: %w", domain.ErrRenderFailed, err)
	}
	return HTMLDocument{Body: body.String(), Footer: footer.String()}, nil
}

package pdf

import "context"

// HTMLDocument documento autocontenido listo para imprimir.
// Footer es la plantilla del pie de página de Chromium (clases pageNumber / totalPages).
type HTMLDocument struct {
	Body   string
	Footer string
}

// BrowserEngine imprime un HTMLDocument como PDF A4.
// Debe liberar el navegador antes de retornar, también con ctx cancelado.
type BrowserEngine interface {
	PrintPDF(ctx context.Context, doc HTMLDocument) ([]byte, error)
}

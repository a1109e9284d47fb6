package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

// DefaultRenderTimeout plazo global de una generación de PDF.
const DefaultRenderTimeout = 120 * time.Second

// Stage etapa del pipeline de entrega del PDF.
type Stage string

const (
	StageValidating Stage = "validating"
	StageLoading    Stage = "loading"
	StageRendering  Stage = "rendering"
	StageVerifying  Stage = "verifying"
	StageSending    Stage = "sending"
	StageFailed     Stage = "failed"
)

// DeliveryError error terminal del pipeline: etapa alcanzada y contexto de diagnóstico.
// Err lleva la pila capturada en el punto de fallo (pkg/errors).
type DeliveryError struct {
	Stage         Stage
	InvoiceID     string
	InvoiceNumber string
	Err           error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("pdf %s: %v", e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// PDFDocument PDF verificado listo para enviarse.
type PDFDocument struct {
	Content       []byte
	Filename      string
	InvoiceNumber string
	Duration      time.Duration
	Warnings      []string
}

// PDFUseCase orquesta carga, renderizado con plazo y verificación del PDF de una factura.
type PDFUseCase struct {
	invoiceRepo   repository.InvoiceRepository
	renderer      InvoicePDFRenderer
	observer      RenderObserver
	renderTimeout time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

// PDFOption opción funcional de PDFUseCase.
type PDFOption func(*PDFUseCase)

// WithRenderTimeout reemplaza el plazo global (120 s por defecto).
func WithRenderTimeout(d time.Duration) PDFOption {
	return func(uc *PDFUseCase) {
		if d > 0 {
			uc.renderTimeout = d
		}
	}
}

// WithObserver registra un observador de métricas.
func WithObserver(o RenderObserver) PDFOption {
	return func(uc *PDFUseCase) {
		if o != nil {
			uc.observer = o
		}
	}
}

// WithLogger asigna el logger del caso de uso.
func WithLogger(log zerolog.Logger) PDFOption {
	return func(uc *PDFUseCase) { uc.log = log }
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(invoiceRepo repository.InvoiceRepository, renderer InvoicePDFRenderer, opts ...PDFOption) *PDFUseCase {
	uc := &PDFUseCase{
		invoiceRepo:   invoiceRepo,
		renderer:      renderer,
		observer:      nopObserver{},
		renderTimeout: DefaultRenderTimeout,
		log:           zerolog.Nop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GenerateInvoicePDF recorre validating → loading → rendering → verifying.
//
// Retorna:
//   - (*PDFDocument, nil)  si el PDF es válido (puede traer Warnings).
//   - *DeliveryError       con la etapa de fallo; usar ClassifyError para la respuesta.
func (uc *PDFUseCase) GenerateInvoicePDF(ctx context.Context, invoiceID string, meta RenderMeta) (*PDFDocument, error) {
	doc, err := uc.generate(ctx, invoiceID, meta)
	if err != nil {
		uc.observer.ObserveFailure(ClassifyError(err).Code)
		return nil, err
	}
	uc.observer.ObserveRender(doc.Duration, len(doc.Content))
	return doc, nil
}

func (uc *PDFUseCase) generate(ctx context.Context, invoiceID string, meta RenderMeta) (*PDFDocument, error) {
	fail := func(stage Stage, inv *entity.Invoice, err error) error {
		de := &DeliveryError{Stage: stage, InvoiceID: invoiceID, Err: errors.WithStack(err)}
		if inv != nil {
			de.InvoiceNumber = inv.InvoiceNumber
		}
		return de
	}

	// ── 1. Validar identificador (sin tocar el almacén) ───────────────────────
	if !entity.IsValidID(invoiceID) {
		return nil, fail(StageValidating, nil, domain.ErrInvalidID)
	}

	// ── 2. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fail(StageLoading, nil, fmt.Errorf("obtener factura: %w", err))
	}
	if inv == nil {
		return nil, fail(StageLoading, nil, domain.ErrNotFound)
	}

	// ── 3. Renderizar con plazo global ────────────────────────────────────────
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = uc.now()
	}
	start := time.Now()
	buf, err := uc.renderWithDeadline(ctx, inv, meta)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fail(StageRendering, inv, err)
	}

	// ── 4. Verificar el documento ─────────────────────────────────────────────
	warnings, err := VerifyPDF(buf)
	if err != nil {
		return nil, fail(StageVerifying, inv, err)
	}
	for _, w := range warnings {
		uc.log.Warn().
			Str("invoice_id", inv.ID).
			Str("invoice_number", inv.InvoiceNumber).
			Int("size", len(buf)).
			Msg(w)
	}

	return &PDFDocument{
		Content:       buf,
		Filename:      PDFFilename(inv.InvoiceNumber, uc.now()),
		InvoiceNumber: inv.InvoiceNumber,
		Duration:      elapsed,
		Warnings:      warnings,
	}, nil
}

// renderWithDeadline lanza el render en su propia goroutine y espera lo primero
// entre su resultado y el plazo. Al vencer el plazo se cancela el contexto del
// render; el renderer libera su navegador por su cuenta y el canal con buffer
// evita que la goroutine quede bloqueada.
func (uc *PDFUseCase) renderWithDeadline(ctx context.Context, inv *entity.Invoice, meta RenderMeta) ([]byte, error) {
	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		buf []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		buf, err := uc.renderer.RenderInvoice(renderCtx, inv, meta)
		done <- result{buf: buf, err: err}
	}()

	timer := time.NewTimer(uc.renderTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return res.buf, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: sin respuesta tras %s", domain.ErrRenderTimeout, uc.renderTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// PDFFilename nombre de descarga: facture-<número>-<AAAA-MM-DD>.pdf
func PDFFilename(invoiceNumber string, day time.Time) string {
	return fmt.Sprintf("facture-%s-%s.pdf", invoiceNumber, day.Format("2006-01-02"))
}

package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/facturas-api/internal/application/billing"
)

// PDFHandler entrega el PDF de una factura.
type PDFHandler struct {
	uc          *billing.PDFUseCase
	log         zerolog.Logger
	development bool
	basePath    string
}

// NewPDFHandler construye el handler. Con development=true los errores incluyen details.
func NewPDFHandler(uc *billing.PDFUseCase, log zerolog.Logger, development bool) *PDFHandler {
	return &PDFHandler{uc: uc, log: log, development: development, basePath: "/api/invoices"}
}

// Generate genera y envía el PDF.
// GET /api/invoices/:id/pdf
func (h *PDFHandler) Generate(c *fiber.Ctx) error {
	id := c.Params("id")
	actor := GetActor(c)
	meta := billing.RenderMeta{Operator: actor.Label(), GeneratedAt: time.Now()}

	// UserContext y no c.Context(): fasthttp reutiliza su contexto tras responder.
	doc, err := h.uc.GenerateInvoicePDF(c.UserContext(), id, meta)
	if err != nil {
		return h.fail(c, id, err)
	}

	// ── sending ───────────────────────────────────────────────────────────────
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set("X-PDF-Generation-Time", strconv.FormatInt(doc.Duration.Milliseconds(), 10)+"ms")
	c.Set("X-PDF-Size", strconv.Itoa(len(doc.Content)))
	c.Response().Header.SetContentLength(len(doc.Content))

	h.log.Info().
		Str("invoice_id", id).
		Str("invoice_number", doc.InvoiceNumber).
		Str("actor", actor.Subject).
		Str("stage", string(billing.StageSending)).
		Int("size", len(doc.Content)).
		Dur("duration", doc.Duration).
		Str("request_id", GetRequestID(c)).
		Msg("PDF entregado")

	return c.Status(fiber.StatusOK).Send(doc.Content)
}

// Download redirige a la ruta canónica del PDF.
// GET /api/invoices/:id/download
func (h *PDFHandler) Download(c *fiber.Ctx) error {
	return c.Redirect(h.basePath+"/"+url.PathEscape(c.Params("id"))+"/pdf", fiber.StatusFound)
}

func (h *PDFHandler) fail(c *fiber.Ctx, id string, err error) error {
	f := billing.ClassifyError(err)

	stage := billing.StageFailed
	var number string
	cause := err
	var de *billing.DeliveryError
	if errors.As(err, &de) {
		stage = de.Stage
		number = de.InvoiceNumber
		cause = de.Err
	}

	h.log.Error().
		Stack().
		Err(cause).
		Str("invoice_id", id).
		Str("invoice_number", number).
		Str("actor", GetActor(c).Subject).
		Str("stage", string(stage)).
		Str("code", f.Code).
		Int("status", f.Status).
		Str("request_id", GetRequestID(c)).
		Msg("fallo en la generación del PDF")

	var details map[string]any
	if h.development {
		details = map[string]any{
			"stage":         stage,
			"error":         err.Error(),
			"invoiceId":     id,
			"invoiceNumber": number,
		}
	}
	return errorJSON(c, f.Status, f.Code, f.Message, details)
}

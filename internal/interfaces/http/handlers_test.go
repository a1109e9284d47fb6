package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/facturas-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/facturas-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "facturas-api-test"
)

type stubRenderer struct {
	out   []byte
	err   error
	block bool
	meta  billing.RenderMeta
}

func (s *stubRenderer) RenderInvoice(ctx context.Context, _ *entity.Invoice, meta billing.RenderMeta) ([]byte, error) {
	s.meta = meta
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.out, s.err
}

func pdfBytes() []byte {
	buf := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("0"), 1500)...)
	return append(buf, []byte("\n%%EOF")...)
}

type testEnv struct {
	app      *fiber.App
	repo     *memory.InvoiceRepo
	renderer *stubRenderer
}

type envOption func(*apphttp.RouterDeps, *[]billing.PDFOption)

func withAuth() envOption {
	return func(d *apphttp.RouterDeps, _ *[]billing.PDFOption) {
		d.JWTSecret = testJWTSecret
		d.JWTIssuer = testIssuer
	}
}

func withDevelopment() envOption {
	return func(d *apphttp.RouterDeps, _ *[]billing.PDFOption) { d.Development = true }
}

func withRenderTimeout(t time.Duration) envOption {
	return func(_ *apphttp.RouterDeps, o *[]billing.PDFOption) {
		*o = append(*o, billing.WithRenderTimeout(t))
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	repo := memory.NewInvoiceRepository()
	renderer := &stubRenderer{out: pdfBytes()}

	deps := apphttp.RouterDeps{Log: zerolog.Nop(), AppName: "facturas-api-test"}
	var pdfOpts []billing.PDFOption
	for _, opt := range opts {
		opt(&deps, &pdfOpts)
	}
	deps.InvoiceUC = billing.NewInvoiceUseCase(repo, memory.NewSerialTxRunner(repo))
	deps.PDFUC = billing.NewPDFUseCase(repo, renderer, pdfOpts...)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(zerolog.Nop())})
	app.Use(apphttp.RequestID())
	apphttp.Router(app, deps)
	return &testEnv{app: app, repo: repo, renderer: renderer}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"designation": "Ciment", "quantity": 2, "unitPrice": "50,5", "totalPrice": 101},
			{"designation": "Sable", "quantity": "1", "unitPrice": 9, "totalPrice": "abc"},
		},
		"clientName":    "Société Alpha",
		"clientNumber":  "C-1",
		"clientAddress": "Tunis",
		"clientTaxId":   "123/A",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CRUD
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoiceHandler_CreateYGet(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/invoices", createBody())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody[dto.InvoiceResponse](t, resp)

	assert.Equal(t, "BCC001", created.InvoiceNumber)
	assert.True(t, decimal.RequireFromString("101").Equal(created.TotalHT), "total no numérico cuenta 0")
	assert.True(t, decimal.RequireFromString("19.19").Equal(created.TotalTVA))
	assert.True(t, decimal.RequireFromString("120.29").Equal(created.TotalTTC))
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))

	resp = env.do(t, http.MethodGet, "/api/invoices/"+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeBody[dto.InvoiceResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Ciment", got.Items[0].Designation)
}

func TestInvoiceHandler_CreateValidacion(t *testing.T) {
	env := newTestEnv(t)

	body := createBody()
	delete(body, "clientName")
	resp := env.do(t, http.MethodPost, "/api/invoices", body)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errBody := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, apphttp.CodeValidation, errBody.Code)
	assert.False(t, errBody.Success)

	body = createBody()
	body["items"] = []map[string]any{}
	resp = env.do(t, http.MethodPost, "/api/invoices", body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInvoiceHandler_ListOrdenDescendente(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		resp := env.do(t, http.MethodPost, "/api/invoices", createBody())
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/api/invoices", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeBody[[]dto.InvoiceResponse](t, resp)
	require.Len(t, list, 3)
	assert.Equal(t, "BCC003", list[0].InvoiceNumber)
	assert.Equal(t, "BCC001", list[2].InvoiceNumber)
}

func TestInvoiceHandler_UpdateYDelete(t *testing.T) {
	env := newTestEnv(t)
	created := decodeBody[dto.InvoiceResponse](t, env.do(t, http.MethodPost, "/api/invoices", createBody()))

	update := map[string]any{
		"items":       []map[string]any{{"designation": "Gravier", "quantity": 1, "unitPrice": 200, "totalPrice": 200}},
		"totalRemise": 10,
	}
	resp := env.do(t, http.MethodPut, "/api/invoices/"+created.ID, update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeBody[dto.InvoiceResponse](t, resp)
	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber)
	assert.True(t, decimal.RequireFromString("228.1").Equal(updated.TotalTTC), "200 + 38 + 0.1 - 10")

	resp = env.do(t, http.MethodDelete, "/api/invoices/"+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/invoices/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp = env.do(t, http.MethodPut, "/api/invoices/"+created.ID, update)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInvoiceHandler_IDInvalido(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/invoices/not-an-id", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidID, decodeBody[dto.ErrorResponse](t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// PDF
// ──────────────────────────────────────────────────────────────────────────────

func TestPDFHandler_Exito(t *testing.T) {
	env := newTestEnv(t)
	created := decodeBody[dto.InvoiceResponse](t, env.do(t, http.MethodPost, "/api/invoices", createBody()))

	resp := env.do(t, http.MethodGet, "/api/invoices/"+created.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="facture-BCC001-`+today+`.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	assert.Equal(t, "0", resp.Header.Get("Expires"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Regexp(t, `^\d+ms$`, resp.Header.Get("X-PDF-Generation-Time"))
	assert.Equal(t, "1515", resp.Header.Get("X-PDF-Size"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes(), body)
	assert.Equal(t, "anonymous", env.renderer.meta.Operator)
}

func TestPDFHandler_IDInvalido(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/invoices/not-an-id/pdf", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errBody := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, billing.CodeInvalidID, errBody.Code)
	assert.Nil(t, errBody.Details, "sin details fuera de desarrollo")
}

func TestPDFHandler_NoEncontrada(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/invoices/"+entity.NewInvoiceID()+"/pdf", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, billing.CodeNotFound, decodeBody[dto.ErrorResponse](t, resp).Code)
}

func TestPDFHandler_PDFCorruptoConDetallesEnDesarrollo(t *testing.T) {
	env := newTestEnv(t, withDevelopment())
	created := decodeBody[dto.InvoiceResponse](t, env.do(t, http.MethodPost, "/api/invoices", createBody()))
	env.renderer.out = []byte("%PDF-1.4 tiny")

	resp := env.do(t, http.MethodGet, "/api/invoices/"+created.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	errBody := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, billing.CodeValidation, errBody.Code)
	require.NotNil(t, errBody.Details)
	assert.Equal(t, string(billing.StageVerifying), errBody.Details["stage"])
	assert.Equal(t, "BCC001", errBody.Details["invoiceNumber"])
}

func TestPDFHandler_Timeout(t *testing.T) {
	env := newTestEnv(t, withRenderTimeout(50*time.Millisecond))
	created := decodeBody[dto.InvoiceResponse](t, env.do(t, http.MethodPost, "/api/invoices", createBody()))
	env.renderer.block = true

	resp := env.do(t, http.MethodGet, "/api/invoices/"+created.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, billing.CodeTimeout, decodeBody[dto.ErrorResponse](t, resp).Code)
}

func TestPDFHandler_DownloadRedirige(t *testing.T) {
	env := newTestEnv(t)
	id := entity.NewInvoiceID()
	resp := env.do(t, http.MethodGet, "/api/invoices/"+id+"/download", nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/invoices/"+id+"/pdf", resp.Header.Get("Location"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y rutas auxiliares
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinTokenRechaza(t *testing.T) {
	env := newTestEnv(t, withAuth())
	resp := env.do(t, http.MethodGet, "/api/invoices", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/invoices", nil, "Authorization", "Basic abc")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/invoices", nil, "Authorization", "Bearer token.invalido")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_OperadorEnElPie(t *testing.T) {
	env := newTestEnv(t, withAuth())
	token, err := pkgjwt.Generate(testJWTSecret, "u-7", "Amira B.", testIssuer, time.Hour)
	require.NoError(t, err)
	auth := []string{"Authorization", "Bearer " + token}

	resp := env.do(t, http.MethodPost, "/api/invoices", createBody(), auth...)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody[dto.InvoiceResponse](t, resp)

	resp = env.do(t, http.MethodGet, "/api/invoices/"+created.ID+"/pdf", nil, auth...)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Amira B.", env.renderer.meta.Operator)
}

func TestHealthYRutaDesconocida(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/nope", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), apphttp.CodeRouteNotFound))
}

func TestRequestID_Propaga(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil, apphttp.HeaderRequestID, "req-123")
	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))
}

func TestRequestID_GeneraUUIDYLoExponeEnLocals(t *testing.T) {
	app := fiber.New()
	app.Use(apphttp.RequestID())
	app.Get("/id", func(c *fiber.Ctx) error { return c.SendString(apphttp.GetRequestID(c)) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/id", nil))
	require.NoError(t, err)
	header := resp.Header.Get(apphttp.HeaderRequestID)
	_, perr := uuid.Parse(header)
	assert.NoError(t, perr, "id generado: %q", header)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, header, string(body))
}

package billing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/invoicing"
	"github.com/jhoicas/facturas-api/internal/infrastructure/memory"
)

func amount(s string) dto.Amount { return dto.NewAmount(decimal.RequireFromString(s)) }

func createRequest(totals ...string) dto.CreateInvoiceRequest {
	req := dto.CreateInvoiceRequest{
		ClientName:    "Société Alpha",
		ClientNumber:  "C-001",
		ClientAddress: "12 rue de Carthage, Tunis",
		ClientTaxID:   "1234567/A/M/000",
	}
	for _, t := range totals {
		req.Items = append(req.Items, dto.InvoiceItemRequest{
			Designation: "Article",
			Quantity:    amount("1"),
			UnitPrice:   amount(t),
			TotalPrice:  amount(t),
		})
	}
	return req
}

func newInvoiceUseCase() (*billing.InvoiceUseCase, *memory.InvoiceRepo) {
	repo := memory.NewInvoiceRepository()
	return billing.NewInvoiceUseCase(repo, memory.NewSerialTxRunner(repo)), repo
}

func TestInvoiceUseCase_PrimeraFacturaBCC001(t *testing.T) {
	uc, _ := newInvoiceUseCase()

	resp, err := uc.Create(context.Background(), createRequest("100"))
	require.NoError(t, err)

	assert.Equal(t, "BCC001", resp.InvoiceNumber)
	assert.True(t, entity.IsValidID(resp.ID), "ID de 24 hex")
	assert.True(t, decimal.RequireFromString("100").Equal(resp.TotalHT))
	assert.True(t, decimal.RequireFromString("19").Equal(resp.TotalTVA))
	assert.True(t, decimal.RequireFromString("0.1").Equal(resp.Timbre))
	assert.True(t, decimal.RequireFromString("119.1").Equal(resp.TotalTTC))
}

func TestInvoiceUseCase_NumeracionConsecutiva(t *testing.T) {
	uc, _ := newInvoiceUseCase()
	ctx := context.Background()

	for _, want := range []string{"BCC001", "BCC002", "BCC003"} {
		resp, err := uc.Create(ctx, createRequest("10"))
		require.NoError(t, err)
		assert.Equal(t, want, resp.InvoiceNumber)
	}

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "BCC003", list[0].InvoiceNumber, "la más reciente primero")
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
}

// N creaciones concurrentes producen N números distintos y consecutivos.
func TestInvoiceUseCase_CreacionConcurrente(t *testing.T) {
	uc, _ := newInvoiceUseCase()
	ctx := context.Background()
	const n = 25

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := uc.Create(ctx, createRequest("5"))
			if err != nil {
				errs <- err
				return
			}
			numbers <- resp.InvoiceNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := make(map[string]bool, n)
	for num := range numbers {
		assert.False(t, seen[num], "número repetido: %s", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[invoicing.FormatInvoiceNumber(i)], "falta %s", invoicing.FormatInvoiceNumber(i))
	}
}

func TestInvoiceUseCase_NumeracionCorruptaFallaCreacion(t *testing.T) {
	uc, repo := newInvoiceUseCase()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.Invoice{ID: entity.NewInvoiceID(), InvoiceNumber: "FAC-7"}))

	_, err := uc.Create(ctx, createRequest("10"))
	assert.ErrorIs(t, err, domain.ErrSequenceCorrupted)
}

func TestInvoiceUseCase_CreateSinLineas(t *testing.T) {
	uc, _ := newInvoiceUseCase()
	_, err := uc.Create(context.Background(), createRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvoiceUseCase_UpdateRecalculaYConservaNumero(t *testing.T) {
	uc, _ := newInvoiceUseCase()
	ctx := context.Background()
	req := createRequest("100")
	timbre := amount("0.5")
	req.Timbre = &timbre
	created, err := uc.Create(ctx, req)
	require.NoError(t, err)

	update := dto.UpdateInvoiceRequest{
		Items:      createRequest("200", "50").Items,
		ClientName: "Société Beta",
	}
	updated, err := uc.Update(ctx, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber, "el número no cambia")
	assert.Equal(t, "Société Beta", updated.ClientName)
	assert.Equal(t, created.ClientTaxID, updated.ClientTaxID, "campos vacíos conservan el valor")
	assert.True(t, decimal.RequireFromString("250").Equal(updated.TotalHT))
	assert.True(t, decimal.RequireFromString("47.5").Equal(updated.TotalTVA))
	assert.True(t, decimal.RequireFromString("0.5").Equal(updated.Timbre), "timbre almacenado")
	assert.True(t, decimal.RequireFromString("298").Equal(updated.TotalTTC))

	got, err := uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, updated.TotalTTC.Equal(got.TotalTTC))
}

func TestInvoiceUseCase_UpdateInexistente(t *testing.T) {
	uc, _ := newInvoiceUseCase()
	_, err := uc.Update(context.Background(), entity.NewInvoiceID(), dto.UpdateInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceUseCase_Delete(t *testing.T) {
	uc, _ := newInvoiceUseCase()
	ctx := context.Background()
	created, err := uc.Create(ctx, createRequest("10"))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestInvoiceUseCase_IDInvalido(t *testing.T) {
	uc, _ := newInvoiceUseCase()
	ctx := context.Background()

	_, err := uc.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	_, err = uc.Update(ctx, "123", dto.UpdateInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.ErrorIs(t, uc.Delete(ctx, "zz"), domain.ErrInvalidID)
}

package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/pkg/config"
)

func TestDocumento_IdaYVuelta(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		ID:            entity.NewInvoiceID(),
		InvoiceNumber: "BCC010",
		Items: []entity.InvoiceItem{
			{Designation: "Ciment", Quantity: decimal.RequireFromString("3"), UnitPrice: decimal.RequireFromString("15.250"), TotalPrice: decimal.RequireFromString("45.75")},
		},
		TotalHT:     decimal.RequireFromString("45.75"),
		TotalTVA:    decimal.RequireFromString("8.6925"),
		Timbre:      decimal.RequireFromString("0.1"),
		TotalRemise: decimal.Zero,
		TotalTTC:    decimal.RequireFromString("54.5425"),
		ClientName:  "Société Alpha",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc, err := toDoc(inv)
	require.NoError(t, err)
	got := doc.toEntity()

	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.True(t, inv.TotalTVA.Equal(got.TotalTVA), "Decimal128 conserva la precisión")
	assert.True(t, inv.TotalTTC.Equal(got.TotalTTC))
	require.Len(t, got.Items, 1)
	assert.True(t, inv.Items[0].UnitPrice.Equal(got.Items[0].UnitPrice))
}

func TestToDoc_IDInvalido(t *testing.T) {
	_, err := toDoc(&entity.Invoice{ID: "xyz"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

// Requiere un servidor real: TEST_MONGO_URI=mongodb://localhost:27017
func TestInvoiceRepo_Integracion(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI no definido")
	}
	ctx := context.Background()
	client, db, err := Connect(ctx, config.MongoConfig{URI: uri, Database: "facturas_test"})
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()
	require.NoError(t, db.Collection(InvoicesCollection).Drop(ctx))
	require.NoError(t, EnsureIndexes(ctx, db))

	repo := NewInvoiceRepository(db)
	base := time.Now().UTC().Truncate(time.Millisecond)
	first := &entity.Invoice{ID: entity.NewInvoiceID(), InvoiceNumber: "BCC001", CreatedAt: base, UpdatedAt: base}
	second := &entity.Invoice{ID: entity.NewInvoiceID(), InvoiceNumber: "BCC002", CreatedAt: base.Add(time.Second), UpdatedAt: base}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	dup := *first
	dup.ID = entity.NewInvoiceID()
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrDuplicate)

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BCC002", latest.InvoiceNumber)

	missing, err := repo.GetByID(ctx, entity.NewInvoiceID())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), domain.ErrNotFound)
}

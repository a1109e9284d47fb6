package repository

import (
	"context"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	// List devuelve todas las facturas, la más reciente primero.
	List(ctx context.Context) ([]*entity.Invoice, error)
	// GetByID devuelve (nil, nil) si la factura no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetLatest devuelve la última factura creada (por created_at) o nil si no hay ninguna.
	GetLatest(ctx context.Context) (*entity.Invoice, error)
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update reemplaza los campos mutables; domain.ErrNotFound si no existe.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// Delete borra la factura; domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}

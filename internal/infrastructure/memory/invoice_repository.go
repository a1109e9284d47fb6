// Package memory implementa el almacén de facturas en memoria (desarrollo y tests)
// y el runner serializado usado por los almacenes sin transacciones.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

type record struct {
	inv *entity.Invoice
	seq uint64 // orden de inserción, desempata created_at
}

// InvoiceRepo almacén en memoria seguro para uso concurrente.
// Guarda copias: los llamadores nunca comparten punteros con el almacén.
type InvoiceRepo struct {
	mu      sync.RWMutex
	records map[string]record
	seq     uint64
}

// NewInvoiceRepository construye un almacén vacío.
func NewInvoiceRepository() *InvoiceRepo {
	return &InvoiceRepo{records: make(map[string]record)}
}

// List devuelve las facturas, la más reciente primero.
func (r *InvoiceRepo) List(_ context.Context) ([]*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(), nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return clone(rec.inv), nil
}

// GetLatest devuelve la última factura por created_at.
func (r *InvoiceRepo) GetLatest(_ context.Context) (*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.sorted()
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// Create inserta la factura; número o ID repetidos devuelven domain.ErrDuplicate.
func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[inv.ID]; ok {
		return fmt.Errorf("%w: id %s", domain.ErrDuplicate, inv.ID)
	}
	for _, rec := range r.records {
		if rec.inv.InvoiceNumber == inv.InvoiceNumber {
			return fmt.Errorf("%w: número %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
	}
	r.seq++
	r.records[inv.ID] = record{inv: clone(inv), seq: r.seq}
	return nil
}

// Update reemplaza la factura conservando número y fecha de creación.
func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := clone(inv)
	updated.InvoiceNumber = rec.inv.InvoiceNumber
	updated.CreatedAt = rec.inv.CreatedAt
	r.records[inv.ID] = record{inv: updated, seq: rec.seq}
	return nil
}

// Delete borra la factura.
func (r *InvoiceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *InvoiceRepo) sorted() []*entity.Invoice {
	recs := make([]record, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.inv.CreatedAt.Equal(b.inv.CreatedAt) {
			return a.inv.CreatedAt.After(b.inv.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]*entity.Invoice, 0, len(recs))
	for _, rec := range recs {
		out = append(out, clone(rec.inv))
	}
	return out
}

func clone(inv *entity.Invoice) *entity.Invoice {
	c := *inv
	c.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	return &c
}

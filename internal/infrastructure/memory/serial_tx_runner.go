package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

var _ billing.InvoiceTxRunner = (*SerialTxRunner)(nil)

// SerialTxRunner serializa las creaciones con un mutex de proceso.
// Solo garantiza unicidad con una única instancia del servicio; con varias
// instancias usar postgres.TxRunner (advisory lock).
type SerialTxRunner struct {
	mu   sync.Mutex
	repo repository.InvoiceRepository
}

// NewSerialTxRunner envuelve repo.
func NewSerialTxRunner(repo repository.InvoiceRepository) *SerialTxRunner {
	return &SerialTxRunner{repo: repo}
}

// RunSerialized ejecuta fn con el mutex tomado. Respeta la cancelación de ctx antes de entrar.
func (r *SerialTxRunner) RunSerialized(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.repo)
}

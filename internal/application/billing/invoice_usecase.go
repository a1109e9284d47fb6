package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/invoicing"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

// InvoiceUseCase CRUD de facturas: numeración en la creación y recálculo de totales.
type InvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
	txRunner    InvoiceTxRunner
	now         func() time.Time
}

// InvoiceOption opción funcional de InvoiceUseCase.
type InvoiceOption func(*InvoiceUseCase)

// WithClock reemplaza el reloj usado para created_at / updated_at.
func WithClock(now func() time.Time) InvoiceOption {
	return func(uc *InvoiceUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(invoiceRepo repository.InvoiceRepository, txRunner InvoiceTxRunner, opts ...InvoiceOption) *InvoiceUseCase {
	uc := &InvoiceUseCase{
		invoiceRepo: invoiceRepo,
		txRunner:    txRunner,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// List devuelve todas las facturas, la más reciente primero.
func (uc *InvoiceUseCase) List(ctx context.Context) ([]dto.InvoiceResponse, error) {
	list, err := uc.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *ToInvoiceResponse(inv))
	}
	return out, nil
}

// Get obtiene una factura por ID.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if !entity.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return ToInvoiceResponse(inv), nil
}

// Create asigna número y totales y persiste la factura.
// Lectura de la última factura + inserción ocurren bajo RunSerialized, así N
// creaciones concurrentes producen N números distintos y consecutivos.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	items := toItems(in.Items)
	inv := &entity.Invoice{
		Items:         items,
		ClientName:    in.ClientName,
		ClientNumber:  in.ClientNumber,
		ClientAddress: in.ClientAddress,
		ClientTaxID:   in.ClientTaxID,
	}
	invoicing.CalculateTotals(items, in.Timbre.Ptr(), in.TotalRemise.Ptr()).Apply(inv)

	err := uc.txRunner.RunSerialized(ctx, func(repo repository.InvoiceRepository) error {
		last, err := repo.GetLatest(ctx)
		if err != nil {
			return fmt.Errorf("obtener última factura: %w", err)
		}
		number, err := invoicing.NextInvoiceNumber(last)
		if err != nil {
			return err
		}
		// created_at estrictamente creciente a resolución de milisegundo (la de MongoDB)
		// e ID generado dentro de la sección crítica: GetLatest desempata por _id.
		now := uc.now().Truncate(time.Millisecond)
		if last != nil {
			if prev := last.CreatedAt.Truncate(time.Millisecond); !now.After(prev) {
				now = prev.Add(time.Millisecond)
			}
		}
		inv.ID = entity.NewInvoiceID()
		inv.InvoiceNumber = number
		inv.CreatedAt = now
		inv.UpdatedAt = now
		return repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

// Update reemplaza los campos mutables y recalcula los totales. El número no cambia.
// Timbre y remise no informados conservan el valor almacenado.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if !entity.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	if in.Items != nil {
		inv.Items = toItems(in.Items)
	}
	inv.ClientName = nonEmpty(in.ClientName, inv.ClientName)
	inv.ClientNumber = nonEmpty(in.ClientNumber, inv.ClientNumber)
	inv.ClientAddress = nonEmpty(in.ClientAddress, inv.ClientAddress)
	inv.ClientTaxID = nonEmpty(in.ClientTaxID, inv.ClientTaxID)

	timbre, remise := inv.Timbre, inv.TotalRemise
	if p := in.Timbre.Ptr(); p != nil {
		timbre = *p
	}
	if p := in.TotalRemise.Ptr(); p != nil {
		remise = *p
	}
	invoicing.CalculateTotals(inv.Items, &timbre, &remise).Apply(inv)
	inv.UpdatedAt = uc.now()

	if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

// Delete borra la factura. Los números emitidos no se reutilizan salvo que se borre la última.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	if !entity.IsValidID(id) {
		return domain.ErrInvalidID
	}
	return uc.invoiceRepo.Delete(ctx, id)
}

func toItems(in []dto.InvoiceItemRequest) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(in))
	for _, it := range in {
		items = append(items, entity.InvoiceItem{
			Designation: it.Designation,
			Quantity:    it.Quantity.Value,
			UnitPrice:   it.UnitPrice.Value,
			TotalPrice:  it.TotalPrice.Value,
		})
	}
	return items
}

// ToInvoiceResponse convierte la entidad en su representación HTTP.
func ToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	if inv == nil {
		return nil
	}
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Items:         make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
		TotalHT:       inv.TotalHT,
		TotalTVA:      inv.TotalTVA,
		Timbre:        inv.Timbre,
		TotalRemise:   inv.TotalRemise,
		TotalTTC:      inv.TotalTTC,
		ClientName:    inv.ClientName,
		ClientNumber:  inv.ClientNumber,
		ClientAddress: inv.ClientAddress,
		ClientTaxID:   inv.ClientTaxID,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			Designation: it.Designation,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return resp
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

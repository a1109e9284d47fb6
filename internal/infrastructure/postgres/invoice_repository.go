package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, invoice_number, items, total_ht, total_tva, timbre, total_remise, total_ttc,
	client_name, client_number, client_address, client_tax_id, created_at, updated_at`

// itemRow forma JSONB de una línea. decimal.Decimal se serializa como string: sin pérdida.
type itemRow struct {
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// List devuelve todas las facturas, la más reciente primero.
func (r *InvoiceRepo) List(ctx context.Context) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC, invoice_number DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// GetByID obtiene una factura por ID. (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLatest la última factura por created_at. (nil, nil) si la tabla está vacía.
func (r *InvoiceRepo) GetLatest(ctx context.Context) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC, invoice_number DESC LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest invoice: %w", err)
	}
	return inv, nil
}

// Create persiste la factura completa.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, items,
		inv.TotalHT, inv.TotalTVA, inv.Timbre, inv.TotalRemise, inv.TotalTTC,
		inv.ClientName, inv.ClientNumber, inv.ClientAddress, inv.ClientTaxID,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update reemplaza líneas, totales y cliente. invoice_number y created_at no se tocan.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	query := `
		UPDATE invoices
		SET items          = $2,
		    total_ht       = $3,
		    total_tva      = $4,
		    timbre         = $5,
		    total_remise   = $6,
		    total_ttc      = $7,
		    client_name    = $8,
		    client_number  = $9,
		    client_address = $10,
		    client_tax_id  = $11,
		    updated_at     = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, items,
		inv.TotalHT, inv.TotalTVA, inv.Timbre, inv.TotalRemise, inv.TotalTTC,
		inv.ClientName, inv.ClientNumber, inv.ClientAddress, inv.ClientTaxID,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la factura.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var items []byte
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &items,
		&inv.TotalHT, &inv.TotalTVA, &inv.Timbre, &inv.TotalRemise, &inv.TotalTTC,
		&inv.ClientName, &inv.ClientNumber, &inv.ClientAddress, &inv.ClientTaxID,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if inv.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return &inv, nil
}

func encodeItems(items []entity.InvoiceItem) ([]byte, error) {
	rows := make([]itemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow(it))
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return b, nil
}

func decodeItems(b []byte) ([]entity.InvoiceItem, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var rows []itemRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]entity.InvoiceItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.InvoiceItem(r))
	}
	return items, nil
}

package postgres

import (
	"context"
	"fmt"
)

// schemaDDL tabla única de facturas. Las líneas se guardan como JSONB ordenado;
// los importes como NUMERIC sin escala: se guardan sin redondeo.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS invoices (
	id              CHAR(24)      PRIMARY KEY,
	invoice_number  VARCHAR(32)   NOT NULL,
	items           JSONB         NOT NULL DEFAULT '[]'::jsonb,
	total_ht        NUMERIC       NOT NULL DEFAULT 0,
	total_tva       NUMERIC       NOT NULL DEFAULT 0,
	timbre          NUMERIC       NOT NULL DEFAULT 0,
	total_remise    NUMERIC       NOT NULL DEFAULT 0,
	total_ttc       NUMERIC       NOT NULL DEFAULT 0,
	client_name     TEXT          NOT NULL DEFAULT '',
	client_number   TEXT          NOT NULL DEFAULT '',
	client_address  TEXT          NOT NULL DEFAULT '',
	client_tax_id   TEXT          NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ   NOT NULL,
	updated_at      TIMESTAMPTZ   NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_invoices_invoice_number ON invoices (invoice_number);
CREATE INDEX IF NOT EXISTS ix_invoices_created_at ON invoices (created_at DESC);
-- tablas creadas con NUMERIC(18,6): cambio sin reescritura
ALTER TABLE invoices
	ALTER COLUMN total_ht     TYPE NUMERIC,
	ALTER COLUMN total_tva    TYPE NUMERIC,
	ALTER COLUMN timbre       TYPE NUMERIC,
	ALTER COLUMN total_remise TYPE NUMERIC,
	ALTER COLUMN total_ttc    TYPE NUMERIC;
`

// EnsureSchema crea la tabla e índices si no existen. Idempotente.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("crear esquema: %w", err)
	}
	return nil
}

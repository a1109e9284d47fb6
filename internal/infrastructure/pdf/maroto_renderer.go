// Package pdf genera el bon de commande en PDF.
//
// Dos motores:
//   - HTMLInvoiceRenderer + RodEngine: plantilla HTML impresa con Chromium headless.
//   - MarotoRenderer: PDF nativo en Go, para hosts sin navegador.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + Matricule  │  N° BCC + Fecha              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / Código / Dirección / Matricule            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Désignation | Qté | P.U. HT | Total HT               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: HT / TVA 19 % / Timbre / Remise / TTC              │
//	│  IMPORTE EN LETRAS                                           │
//	│  FOOTER: emisor · operador · fecha · página X / N            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

var _ billing.InvoicePDFRenderer = (*MarotoRenderer)(nil)

// MarotoRenderer implementa billing.InvoicePDFRenderer con Maroto v2 (sin navegador).
type MarotoRenderer struct {
	company Company
}

// NewMarotoRenderer construye el renderer.
func NewMarotoRenderer(company Company) *MarotoRenderer {
	return &MarotoRenderer{company: company}
}

// RenderInvoice genera el PDF y devuelve sus bytes.
func (r *MarotoRenderer) RenderInvoice(ctx context.Context, inv *entity.Invoice, meta billing.RenderMeta) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
	}
	view := newInvoiceView(r.company, inv)
	foot := newFooterView(r.company, inv, meta)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Bon de commande "+inv.InvoiceNumber, true).
		WithAuthor(r.company.Name, true).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   colorGray,
		}).
		Build()

	m := maroto.New(cfg)
	if err := m.RegisterFooter(footerRow(foot)); err != nil {
		return nil, fmt.Errorf("%w: registrar pie: %w", domain.ErrRenderFailed, err)
	}

	m.AddRows(headerRow(view))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(view))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(view.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(view)...)
	m.AddRows(wordsRow(view))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: generar documento: %w", domain.ErrRenderFailed, err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y N° + fecha (der).
func headerRow(v invoiceView) core.Row {
	return row.New(22).Add(
		col.New(7).Add(
			text.New(v.Company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(v.Company.Address, props.Text{Size: 8, Top: 8, Color: colorGray}),
			text.New(companyContact(v.Company), props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("BON DE COMMANDE", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+v.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date : "+v.Date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// clientRow: bloque del cliente.
func clientRow(v invoiceView) core.Row {
	return row.New(22).Add(
		col.New(12).Add(
			text.New("CLIENT", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(v.ClientName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Code client : "+v.ClientNumber+"   |   Matricule fiscal : "+v.ClientTaxID,
				props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New(v.ClientAddress, props.Text{Size: 8, Top: 17, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Désignation", 6, align.Left),
		h("Qté", 1, align.Center),
		h("P.U. HT", 2, align.Right),
		h("Total HT", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableItemRows: una fila por línea, en el orden almacenado.
func tableItemRows(items []itemView) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(6).Add(text.New(it.Designation, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(it.Quantity, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(it.UnitPrice, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(it.TotalPrice, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// totalsRows: resumen alineado a la derecha; la remise solo si no es cero.
func totalsRows(v invoiceView) []core.Row {
	entry := func(label, value string, grand bool) core.Row {
		style := props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1}
		if grand {
			style = props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 1, Color: colorPrimary}
		}
		labelStyle := style
		labelStyle.Style = fontstyle.Bold
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, labelStyle)),
			col.New(3).Add(text.New(value, style)),
		)
	}
	rows := []core.Row{
		entry("Total HT :", v.TotalHT, false),
		entry("TVA "+v.TVARate+" % :", v.TotalTVA, false),
		entry("Timbre fiscal :", v.Timbre, false),
	}
	if v.HasRemise {
		rows = append(rows, entry("Remise :", "- "+v.TotalRemise, false))
	}
	return append(rows, entry("Total TTC :", v.TotalTTC, true))
}

func wordsRow(v invoiceView) core.Row {
	return row.New(14).Add(col.New(12).Add(
		text.New("Arrêté le présent bon de commande à la somme de : "+v.AmountInWords+".",
			props.Text{Size: 8, Style: fontstyle.Italic, Top: 6}),
	))
}

func footerRow(f footerView) core.Row {
	return row.New(6).Add(col.New(9).Add(
		text.New(fmt.Sprintf("%s · %s · Édité par %s le %s", f.Company, f.Number, f.Operator, f.GeneratedAt),
			props.Text{Size: 7, Color: colorGray}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func companyContact(c Company) string {
	s := "Matricule fiscal : " + nonEmpty(c.TaxID, "—")
	if c.Phone != "" {
		s += "   |   Tél : " + c.Phone
	}
	if c.Email != "" {
		s += "   |   " + c.Email
	}
	return s
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

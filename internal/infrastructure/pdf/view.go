package pdf

import (
	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/invoicing"
)

// Company datos del emisor impresos en la cabecera.
type Company struct {
	Name    string
	Address string
	TaxID   string
	Phone   string
	Email   string
}

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
	anonymousLabel = "système"
)

type itemView struct {
	Designation string
	Quantity    string
	UnitPrice   string
	TotalPrice  string
}

// invoiceView valores ya formateados; las plantillas no calculan nada.
// TotalTVA sale del valor almacenado, no se recalcula al imprimir.
type invoiceView struct {
	Company       Company
	Number        string
	Date          string
	ClientName    string
	ClientNumber  string
	ClientAddress string
	ClientTaxID   string
	Items         []itemView
	TVARate       string
	TotalHT       string
	TotalTVA      string
	Timbre        string
	TotalRemise   string
	HasRemise     bool
	TotalTTC      string
	AmountInWords string
}

type footerView struct {
	Company     string
	Number      string
	Operator    string
	GeneratedAt string
}

func newInvoiceView(company Company, inv *entity.Invoice) invoiceView {
	v := invoiceView{
		Company:       company,
		Number:        inv.InvoiceNumber,
		Date:          inv.CreatedAt.Format(dateLayout),
		ClientName:    inv.ClientName,
		ClientNumber:  inv.ClientNumber,
		ClientAddress: inv.ClientAddress,
		ClientTaxID:   inv.ClientTaxID,
		Items:         make([]itemView, 0, len(inv.Items)),
		TVARate:       FormatNumber(invoicing.TVARate.Shift(2), 0),
		TotalHT:       FormatMoney(inv.TotalHT),
		TotalTVA:      FormatMoney(inv.TotalTVA),
		Timbre:        FormatMoney(inv.Timbre),
		TotalRemise:   FormatMoney(inv.TotalRemise),
		HasRemise:     !inv.TotalRemise.IsZero(),
		TotalTTC:      FormatMoney(inv.TotalTTC),
		AmountInWords: FormatAmountInWords(inv.TotalTTC),
	}
	for _, it := range inv.Items {
		v.Items = append(v.Items, itemView{
			Designation: it.Designation,
			Quantity:    FormatQuantity(it.Quantity),
			UnitPrice:   FormatMoney(it.UnitPrice),
			TotalPrice:  FormatMoney(it.TotalPrice),
		})
	}
	return v
}

func newFooterView(company Company, inv *entity.Invoice, meta billing.RenderMeta) footerView {
	operator := meta.Operator
	if operator == "" {
		operator = anonymousLabel
	}
	return footerView{
		Company:     company.Name,
		Number:      inv.InvoiceNumber,
		Operator:    operator,
		GeneratedAt: meta.GeneratedAt.Format(dateTimeLayout),
	}
}

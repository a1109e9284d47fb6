package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// Documentos BSON. Importes como Decimal128 para no perder precisión.
type itemDoc struct {
	Designation string               `bson:"designation"`
	Quantity    primitive.Decimal128 `bson:"quantity"`
	UnitPrice   primitive.Decimal128 `bson:"unit_price"`
	TotalPrice  primitive.Decimal128 `bson:"total_price"`
}

type invoiceDoc struct {
	ID            primitive.ObjectID   `bson:"_id"`
	InvoiceNumber string               `bson:"invoice_number"`
	Items         []itemDoc            `bson:"items"`
	TotalHT       primitive.Decimal128 `bson:"total_ht"`
	TotalTVA      primitive.Decimal128 `bson:"total_tva"`
	Timbre        primitive.Decimal128 `bson:"timbre"`
	TotalRemise   primitive.Decimal128 `bson:"total_remise"`
	TotalTTC      primitive.Decimal128 `bson:"total_ttc"`
	ClientName    string               `bson:"client_name"`
	ClientNumber  string               `bson:"client_number"`
	ClientAddress string               `bson:"client_address"`
	ClientTaxID   string               `bson:"client_tax_id"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// InvoiceRepo implementación de InvoiceRepository sobre una colección.
type InvoiceRepo struct {
	coll *mongo.Collection
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(db *mongo.Database) *InvoiceRepo {
	return &InvoiceRepo{coll: db.Collection(InvoicesCollection)}
}

// List devuelve todas las facturas, la más reciente primero.
func (r *InvoiceRepo) List(ctx context.Context) ([]*entity.Invoice, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	var docs []invoiceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}
	out := make([]*entity.Invoice, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

// GetByID (nil, nil) si no existe o el id no es un ObjectID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, nil)
}

// GetLatest la última factura por created_at.
func (r *InvoiceRepo) GetLatest(ctx context.Context) (*entity.Invoice, error) {
	return r.findOne(ctx, bson.D{}, options.FindOne().SetSort(newestFirst))
}

// Create inserta la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	doc, err := toDoc(inv)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update reemplaza líneas, totales y cliente. invoice_number y created_at no se tocan.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	doc, err := toDoc(inv)
	if err != nil {
		return err
	}
	set := bson.D{
		{Key: "items", Value: doc.Items},
		{Key: "total_ht", Value: doc.TotalHT},
		{Key: "total_tva", Value: doc.TotalTVA},
		{Key: "timbre", Value: doc.Timbre},
		{Key: "total_remise", Value: doc.TotalRemise},
		{Key: "total_ttc", Value: doc.TotalTTC},
		{Key: "client_name", Value: doc.ClientName},
		{Key: "client_number", Value: doc.ClientNumber},
		{Key: "client_address", Value: doc.ClientAddress},
		{Key: "client_tax_id", Value: doc.ClientTaxID},
		{Key: "updated_at", Value: doc.UpdatedAt},
	}
	res, err := r.coll.UpdateByID(ctx, doc.ID, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la factura.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) findOne(ctx context.Context, filter bson.D, opts *options.FindOneOptions) (*entity.Invoice, error) {
	var doc invoiceDoc
	var err error
	if opts != nil {
		err = r.coll.FindOne(ctx, filter, opts).Decode(&doc)
	} else {
		err = r.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return doc.toEntity(), nil
}

func toDoc(inv *entity.Invoice) (*invoiceDoc, error) {
	oid, err := primitive.ObjectIDFromHex(inv.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, inv.ID)
	}
	doc := &invoiceDoc{
		ID:            oid,
		InvoiceNumber: inv.InvoiceNumber,
		Items:         make([]itemDoc, 0, len(inv.Items)),
		TotalHT:       toDecimal128(inv.TotalHT),
		TotalTVA:      toDecimal128(inv.TotalTVA),
		Timbre:        toDecimal128(inv.Timbre),
		TotalRemise:   toDecimal128(inv.TotalRemise),
		TotalTTC:      toDecimal128(inv.TotalTTC),
		ClientName:    inv.ClientName,
		ClientNumber:  inv.ClientNumber,
		ClientAddress: inv.ClientAddress,
		ClientTaxID:   inv.ClientTaxID,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	for _, it := range inv.Items {
		doc.Items = append(doc.Items, itemDoc{
			Designation: it.Designation,
			Quantity:    toDecimal128(it.Quantity),
			UnitPrice:   toDecimal128(it.UnitPrice),
			TotalPrice:  toDecimal128(it.TotalPrice),
		})
	}
	return doc, nil
}

func (d *invoiceDoc) toEntity() *entity.Invoice {
	inv := &entity.Invoice{
		ID:            d.ID.Hex(),
		InvoiceNumber: d.InvoiceNumber,
		Items:         make([]entity.InvoiceItem, 0, len(d.Items)),
		TotalHT:       fromDecimal128(d.TotalHT),
		TotalTVA:      fromDecimal128(d.TotalTVA),
		Timbre:        fromDecimal128(d.Timbre),
		TotalRemise:   fromDecimal128(d.TotalRemise),
		TotalTTC:      fromDecimal128(d.TotalTTC),
		ClientName:    d.ClientName,
		ClientNumber:  d.ClientNumber,
		ClientAddress: d.ClientAddress,
		ClientTaxID:   d.ClientTaxID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, it := range d.Items {
		inv.Items = append(inv.Items, entity.InvoiceItem{
			Designation: it.Designation,
			Quantity:    fromDecimal128(it.Quantity),
			UnitPrice:   fromDecimal128(it.UnitPrice),
			TotalPrice:  fromDecimal128(it.TotalPrice),
		})
	}
	return inv
}

// toDecimal128 los valores que exceden Decimal128 (34 dígitos) se guardan como cero.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

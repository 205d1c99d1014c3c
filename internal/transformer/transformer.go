package transformer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"business-pipeline/internal/entity"
	"business-pipeline/internal/schema"
)

// taxRate converts a unit price into a price with tax.
const taxRate = 1.10

// Defaults for product columns on orders whose join found no match.
const (
	defaultProductName     = "Unknown"
	defaultProductCategory = "N/A"
)

// TransformationError wraps a failure of one transformation stage.
type TransformationError struct {
	Stage string
	Err   error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("%s transformation failed: %v", e.Stage, e.Err)
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

// orderRow is an order after column selection and date parsing, before the
// product join.
type orderRow struct {
	OrderID      int
	CustomerName string
	OrderAmount  float64
	OrderDate    time.Time
	OrderYear    int
	Source       string
}

// Transformer reshapes the two extracted tables into the combined
// reporting table and enforces the schemas on the way.
type Transformer struct {
	productSchema  schema.Schema[entity.Product]
	combinedSchema schema.Schema[entity.CombinedRecord]
}

// New creates a new instance of Transformer.
func New() *Transformer {
	return &Transformer{
		productSchema:  schema.ProductSchema(),
		combinedSchema: schema.CombinedSchema(),
	}
}

// Transform renames and enriches both tables, joins them, and validates the
// result. Either input being empty yields an empty output table with a
// logged warning; a schema violation fails the whole call with no output.
func (t *Transformer) Transform(apiProducts []entity.APIProduct, rawOrders []entity.Order) ([]entity.CombinedRecord, error) {
	log.Info().Msg("Initiating data transformation")
	loadTS := time.Now()

	products, err := t.transformProducts(apiProducts, loadTS)
	if err != nil {
		log.Error().Err(err).Msg("Data transformation failed")
		return nil, err
	}

	orders, err := t.transformOrders(rawOrders, loadTS)
	if err != nil {
		log.Error().Err(err).Msg("Data transformation failed")
		return nil, err
	}

	if len(products) == 0 || len(orders) == 0 {
		log.Warn().Msg("No data combined due to empty input")
		return nil, nil
	}

	// Demo relationship: every order is assigned the first product's id
	// before the join. This is a fixed assignment, not a real foreign key.
	combined := join(orders, products, products[0].ProductID, loadTS)

	if err := t.combinedSchema.Validate(combined); err != nil {
		wrapped := &TransformationError{Stage: "combined", Err: err}
		log.Error().Err(wrapped).Msg("Data transformation failed")
		return nil, wrapped
	}
	log.Info().Msg("Combined data validated successfully")

	return combined, nil
}

// transformProducts selects the reporting columns under their canonical
// names, tags rows with source and load timestamp, computes price_with_tax,
// and validates against the product schema.
func (t *Transformer) transformProducts(apiProducts []entity.APIProduct, loadTS time.Time) ([]entity.Product, error) {
	if len(apiProducts) == 0 {
		log.Warn().Msg("No API data available for transformation")
		return nil, nil
	}

	products := make([]entity.Product, 0, len(apiProducts))
	for _, p := range apiProducts {
		products = append(products, entity.Product{
			ProductID:       p.ID,
			ProductName:     p.Title,
			UnitPrice:       p.Price,
			ProductCategory: p.Category,
			Source:          "API",
			LoadTimestamp:   loadTS,
			PriceWithTax:    p.Price * taxRate,
		})
	}

	if err := t.productSchema.Validate(products); err != nil {
		return nil, &TransformationError{Stage: "product", Err: err}
	}
	log.Info().Msg("Product data validated successfully")

	return products, nil
}

// transformOrders selects the order columns, parses order_date into a real
// date, and derives order_year.
func (t *Transformer) transformOrders(rawOrders []entity.Order, loadTS time.Time) ([]orderRow, error) {
	if len(rawOrders) == 0 {
		log.Warn().Msg("No CSV data available for transformation")
		return nil, nil
	}

	orders := make([]orderRow, 0, len(rawOrders))
	for _, o := range rawOrders {
		date, err := time.Parse("2006-01-02", o.OrderDate)
		if err != nil {
			return nil, &TransformationError{Stage: "order", Err: fmt.Errorf("order %d: invalid order_date %q: %w", o.OrderID, o.OrderDate, err)}
		}
		orders = append(orders, orderRow{
			OrderID:      o.OrderID,
			CustomerName: o.CustomerName,
			OrderAmount:  o.OrderAmount,
			OrderDate:    date,
			OrderYear:    date.Year(),
			Source:       "CSV",
		})
	}
	log.Info().Msg("Order data prepared")

	return orders, nil
}

// join left-joins the orders against the product table on the assigned
// product id, computes total_order_value, and fills missing product columns
// with fixed defaults instead of nulls.
func join(orders []orderRow, products []entity.Product, assignID int, loadTS time.Time) []entity.CombinedRecord {
	byID := make(map[int]entity.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	combined := make([]entity.CombinedRecord, 0, len(orders))
	for _, o := range orders {
		record := entity.CombinedRecord{
			OrderID:         o.OrderID,
			CustomerName:    o.CustomerName,
			OrderAmount:     o.OrderAmount,
			OrderDate:       entity.NewDate(o.OrderDate),
			OrderYear:       o.OrderYear,
			Source:          o.Source,
			LoadTimestamp:   entity.Timestamp{Time: loadTS},
			ProductID:       assignID,
			ProductName:     defaultProductName,
			UnitPrice:       0,
			ProductCategory: defaultProductCategory,
			PriceWithTax:    0,
		}
		if p, ok := byID[assignID]; ok {
			record.ProductName = p.ProductName
			record.UnitPrice = p.UnitPrice
			record.ProductCategory = p.ProductCategory
			record.PriceWithTax = p.PriceWithTax
		}
		record.TotalOrderValue = o.OrderAmount + record.PriceWithTax
		combined = append(combined, record)
	}
	return combined
}

package repository

import (
	"context"
	"database/sql"

	"business-pipeline/internal/entity"
)

// ReportRepository persists combined records to the optional MySQL sink.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReport inserts every record of one run inside a single transaction,
// so a mid-batch failure leaves no partial rows behind.
func (r *ReportRepository) SaveReport(ctx context.Context, records []entity.CombinedRecord) error {
	query := `INSERT INTO combined_orders (
		order_id, customer_name, order_amount, order_date, order_year,
		source, load_timestamp, product_id, product_name, unit_price,
		product_category, price_with_tax, total_order_value
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, record := range records {
		_, err := tx.ExecContext(ctx, query,
			record.OrderID,
			record.CustomerName,
			record.OrderAmount,
			record.OrderDate.Format("2006-01-02"),
			record.OrderYear,
			record.Source,
			record.LoadTimestamp.Format("2006-01-02 15:04:05"),
			record.ProductID,
			record.ProductName,
			record.UnitPrice,
			record.ProductCategory,
			record.PriceWithTax,
			record.TotalOrderValue,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

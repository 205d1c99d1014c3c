package migrations

import (
	"database/sql"
	"time"
)

// AutoMigrateReports creates the combined_orders table if it does not exist.
func AutoMigrateReports(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS combined_orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			order_amount DOUBLE NOT NULL,
			order_date DATE NOT NULL,
			order_year INT NOT NULL,
			source VARCHAR(10) NOT NULL,
			load_timestamp DATETIME NOT NULL,
			product_id INT NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			unit_price DOUBLE NOT NULL,
			product_category VARCHAR(255) NOT NULL,
			price_with_tax DOUBLE NOT NULL,
			total_order_value DOUBLE NOT NULL
		);
	`
	_, err := db.Exec(query)
	if err != nil {
		// Retry creating the table
		for i := 0; i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
			if err == nil {
				break
			}
		}
	}
	return err
}

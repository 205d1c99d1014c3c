package entity

import "time"

// APIProduct is a raw product record as returned by the store API.
// Field names follow the API payload; renaming to the reporting
// columns happens in the transformer.
type APIProduct struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Product is a product record in the canonical reporting shape.
type Product struct {
	ProductID       int
	ProductName     string
	UnitPrice       float64
	ProductCategory string
	Source          string
	LoadTimestamp   time.Time
	PriceWithTax    float64
}

// Order is a raw customer order as generated by the synthetic source.
// OrderDate stays a plain YYYY-MM-DD string until the transformer
// parses it, matching what the sample CSV round-trip produces.
type Order struct {
	OrderID      int     `csv:"order_id" json:"order_id"`
	CustomerName string  `csv:"customer_name" json:"customer_name"`
	OrderAmount  float64 `csv:"order_amount" json:"order_amount"`
	OrderDate    string  `csv:"order_date" json:"order_date"`
}

// CombinedRecord is one row of the final reporting table. The csv tags
// define the output column order.
type CombinedRecord struct {
	OrderID         int       `csv:"order_id" json:"order_id"`
	CustomerName    string    `csv:"customer_name" json:"customer_name"`
	OrderAmount     float64   `csv:"order_amount" json:"order_amount"`
	OrderDate       Date      `csv:"order_date" json:"order_date"`
	OrderYear       int       `csv:"order_year" json:"order_year"`
	Source          string    `csv:"source" json:"source"`
	LoadTimestamp   Timestamp `csv:"load_timestamp" json:"load_timestamp"`
	ProductID       int       `csv:"product_id" json:"product_id"`
	ProductName     string    `csv:"product_name" json:"product_name"`
	UnitPrice       float64   `csv:"unit_price" json:"unit_price"`
	ProductCategory string    `csv:"product_category" json:"product_category"`
	PriceWithTax    float64   `csv:"price_with_tax" json:"price_with_tax"`
	TotalOrderValue float64   `csv:"total_order_value" json:"total_order_value"`
}

/*
MySQL schema for the optional report sink:

CREATE TABLE combined_orders (
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
*/

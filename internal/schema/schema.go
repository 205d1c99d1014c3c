package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"business-pipeline/internal/entity"
)

// Column is a single declarative constraint: a reporting column name and
// the check every row must satisfy for it.
type Column[T any] struct {
	Name  string
	Check func(row T) error
}

// Schema is an ordered set of column constraints for one table shape.
type Schema[T any] struct {
	Name    string
	Columns []Column[T]
}

// Violation records one failed check.
type Violation struct {
	Row    int
	Column string
	Reason string
}

// ValidationError carries every violation found in a table. Validation is
// lazy: the whole table is checked before failing, so callers see the full
// list, not just the first bad cell.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s schema: %d violation(s)", e.Schema, len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "; row %d column %s: %s", v.Row, v.Column, v.Reason)
	}
	return b.String()
}

// Validate checks every column constraint against every row and returns a
// *ValidationError collecting all violations, or nil when the table is clean.
func (s Schema[T]) Validate(rows []T) error {
	var violations []Violation
	for i, row := range rows {
		for _, col := range s.Columns {
			if err := col.Check(row); err != nil {
				violations = append(violations, Violation{Row: i, Column: col.Name, Reason: err.Error()})
			}
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Schema: s.Name, Violations: violations}
	}
	return nil
}

// ProductSchema validates transformed product records.
func ProductSchema() Schema[entity.Product] {
	return Schema[entity.Product]{
		Name: "product",
		Columns: []Column[entity.Product]{
			{Name: "product_id", Check: func(p entity.Product) error {
				return minInt(p.ProductID, 1)
			}},
			{Name: "product_name", Check: func(p entity.Product) error {
				return nonEmpty(p.ProductName)
			}},
			{Name: "unit_price", Check: func(p entity.Product) error {
				return positive(p.UnitPrice)
			}},
			{Name: "product_category", Check: func(p entity.Product) error {
				return nonEmpty(p.ProductCategory)
			}},
			{Name: "price_with_tax", Check: func(p entity.Product) error {
				return positive(p.PriceWithTax)
			}},
		},
	}
}

// CombinedSchema validates the final reporting records.
func CombinedSchema() Schema[entity.CombinedRecord] {
	return Schema[entity.CombinedRecord]{
		Name: "combined",
		Columns: []Column[entity.CombinedRecord]{
			{Name: "order_id", Check: func(r entity.CombinedRecord) error {
				return minInt(r.OrderID, 100)
			}},
			{Name: "customer_name", Check: func(r entity.CombinedRecord) error {
				return nonEmpty(r.CustomerName)
			}},
			{Name: "order_amount", Check: func(r entity.CombinedRecord) error {
				return positive(r.OrderAmount)
			}},
			{Name: "order_date", Check: func(r entity.CombinedRecord) error {
				return notInFuture(r.OrderDate.Time)
			}},
			{Name: "total_order_value", Check: func(r entity.CombinedRecord) error {
				return positive(r.TotalOrderValue)
			}},
		},
	}
}

func minInt(v, min int) error {
	if v < min {
		return fmt.Errorf("must be >= %d, got %d", min, v)
	}
	return nil
}

func nonEmpty(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func positive(v float64) error {
	if v <= 0 {
		return fmt.Errorf("must be > 0, got %g", v)
	}
	return nil
}

// Now returns the wall-clock time used by the date checks. Split for
// testability.
var Now = time.Now

// notInFuture accepts any date up to and including today's calendar date.
// Dates are compared at day granularity: a date-only value parses to
// midnight, and comparing that instant against the clock would reject
// today's date on any host whose local calendar day is ahead of the
// date's zone.
func notInFuture(t time.Time) error {
	y, m, d := Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	if t.After(today) {
		return fmt.Errorf("must not be in the future, got %s", t.Format("2006-01-02"))
	}
	return nil
}

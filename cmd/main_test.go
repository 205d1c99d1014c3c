package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"business-pipeline/internal/config"
	"business-pipeline/internal/entity"
	"business-pipeline/internal/loader"
	"business-pipeline/internal/pipeline"
	"business-pipeline/internal/transformer"
)

type stubProducts struct {
	products []entity.APIProduct
}

func (s stubProducts) Fetch(ctx context.Context) ([]entity.APIProduct, error) {
	return s.products, nil
}

type stubOrders struct {
	orders []entity.Order
}

func (s stubOrders) Fetch() ([]entity.Order, error) {
	return s.orders, nil
}

func TestRunOnceReleasesResources(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Path = filepath.Join(t.TempDir(), "report.csv")

	p := pipeline.New(
		stubProducts{products: []entity.APIProduct{{ID: 1, Title: "Widget", Price: 10.0, Category: "tools"}}},
		stubOrders{orders: []entity.Order{{OrderID: 101, CustomerName: "A", OrderAmount: 20.0, OrderDate: "2024-01-01"}}},
		transformer.New(),
		loader.NewCSVLoader(cfg, nil),
		nil,
	)

	cleaned := false
	code := runOnce(context.Background(), p, func() { cleaned = true })

	assert.Equal(t, 0, code)
	assert.True(t, cleaned)
}

func TestRunOnceReleasesResourcesOnFailure(t *testing.T) {
	p := pipeline.New(
		stubProducts{},
		stubOrders{},
		transformer.New(),
		loader.NewCSVLoader(&config.Config{}, nil),
		nil,
	)

	cleaned := false
	code := runOnce(context.Background(), p, func() { cleaned = true })

	assert.Equal(t, 1, code)
	assert.True(t, cleaned)
}

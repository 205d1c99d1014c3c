package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"business-pipeline/internal/entity"
	"business-pipeline/internal/transformer"
)

// MockProductExtractor is a mock implementation of ProductExtractor.
type MockProductExtractor struct {
	mock.Mock
}

func (m *MockProductExtractor) Fetch(ctx context.Context) ([]entity.APIProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.APIProduct), args.Error(1)
}

// MockOrderExtractor is a mock implementation of OrderExtractor.
type MockOrderExtractor struct {
	mock.Mock
}

func (m *MockOrderExtractor) Fetch() ([]entity.Order, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

// MockLoader is a mock implementation of Loader.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, records []entity.CombinedRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockReportSaver is a mock implementation of ReportSaver.
type MockReportSaver struct {
	mock.Mock
}

func (m *MockReportSaver) SaveReport(ctx context.Context, records []entity.CombinedRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func products() []entity.APIProduct {
	return []entity.APIProduct{{ID: 1, Title: "Widget", Price: 10.0, Category: "tools"}}
}

func orders() []entity.Order {
	return []entity.Order{{OrderID: 101, CustomerName: "A", OrderAmount: 20.0, OrderDate: "2024-01-01"}}
}

func TestRunHappyPath(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)

	mockProducts.On("Fetch", mock.Anything).Return(products(), nil)
	mockOrders.On("Fetch").Return(orders(), nil)
	mockLoader.On("Load", mock.Anything, mock.AnythingOfType("[]entity.CombinedRecord")).Return(nil)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, nil)

	err := p.Run(context.Background())

	require.NoError(t, err)
	mockLoader.AssertExpectations(t)
	loaded := mockLoader.Calls[0].Arguments.Get(1).([]entity.CombinedRecord)
	require.Len(t, loaded, 1)
	assert.Equal(t, 101, loaded[0].OrderID)
	assert.Equal(t, "Widget", loaded[0].ProductName)
}

func TestRunSavesReportsWhenConfigured(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)
	mockReports := new(MockReportSaver)

	mockProducts.On("Fetch", mock.Anything).Return(products(), nil)
	mockOrders.On("Fetch").Return(orders(), nil)
	mockLoader.On("Load", mock.Anything, mock.Anything).Return(nil)
	mockReports.On("SaveReport", mock.Anything, mock.AnythingOfType("[]entity.CombinedRecord")).Return(nil)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, mockReports)

	err := p.Run(context.Background())

	require.NoError(t, err)
	mockReports.AssertExpectations(t)
}

func TestRunAbortsWhenNothingExtracted(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)

	mockProducts.On("Fetch", mock.Anything).Return([]entity.APIProduct{}, nil)
	mockOrders.On("Fetch").Return([]entity.Order{}, nil)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, nil)

	err := p.Run(context.Background())

	assert.ErrorIs(t, err, ErrNoData)
	mockLoader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestRunAbortsBeforeLoadWhenOrdersEmpty(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)

	mockProducts.On("Fetch", mock.Anything).Return(products(), nil)
	mockOrders.On("Fetch").Return([]entity.Order{}, nil)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, nil)

	err := p.Run(context.Background())

	assert.ErrorIs(t, err, ErrNothingToLoad)
	mockLoader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestRunAbortsBeforeLoadWhenProductsEmpty(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)

	mockProducts.On("Fetch", mock.Anything).Return([]entity.APIProduct{}, nil)
	mockOrders.On("Fetch").Return(orders(), nil)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, nil)

	err := p.Run(context.Background())

	assert.ErrorIs(t, err, ErrNothingToLoad)
	mockLoader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestRunPropagatesExtractionError(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)

	fetchErr := errors.New("api unreachable")
	mockProducts.On("Fetch", mock.Anything).Return(nil, fetchErr)
	mockOrders.On("Fetch").Return(orders(), nil)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, nil)

	err := p.Run(context.Background())

	assert.ErrorIs(t, err, fetchErr)
	mockLoader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestRunPropagatesLoadError(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)

	loadErr := errors.New("disk full")
	mockProducts.On("Fetch", mock.Anything).Return(products(), nil)
	mockOrders.On("Fetch").Return(orders(), nil)
	mockLoader.On("Load", mock.Anything, mock.Anything).Return(loadErr)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, nil)

	err := p.Run(context.Background())

	assert.ErrorIs(t, err, loadErr)
}

func TestRunRejectsInvalidCombinedTable(t *testing.T) {
	mockProducts := new(MockProductExtractor)
	mockOrders := new(MockOrderExtractor)
	mockLoader := new(MockLoader)

	badOrders := []entity.Order{{OrderID: 101, CustomerName: "A", OrderAmount: -20.0, OrderDate: "2024-01-01"}}
	mockProducts.On("Fetch", mock.Anything).Return(products(), nil)
	mockOrders.On("Fetch").Return(badOrders, nil)

	p := New(mockProducts, mockOrders, transformer.New(), mockLoader, nil)

	err := p.Run(context.Background())

	var trErr *transformer.TransformationError
	require.ErrorAs(t, err, &trErr)
	mockLoader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

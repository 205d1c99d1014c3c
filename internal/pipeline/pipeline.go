package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"business-pipeline/internal/entity"
)

// ErrNoData means neither extractor produced rows; the run stops before
// the transform stage.
var ErrNoData = errors.New("no data extracted")

// ErrNothingToLoad means the transform produced an empty table; the run
// stops before the loader touches the output file.
var ErrNothingToLoad = errors.New("no data to load")

// ProductExtractor fetches the raw product table.
type ProductExtractor interface {
	Fetch(ctx context.Context) ([]entity.APIProduct, error)
}

// OrderExtractor fetches the raw order batch.
type OrderExtractor interface {
	Fetch() ([]entity.Order, error)
}

// Transformer merges the two tables into the combined reporting table.
type Transformer interface {
	Transform(products []entity.APIProduct, orders []entity.Order) ([]entity.CombinedRecord, error)
}

// Loader delivers the combined table to the output file.
type Loader interface {
	Load(ctx context.Context, records []entity.CombinedRecord) error
}

// ReportSaver persists the combined table to the optional report sink.
type ReportSaver interface {
	SaveReport(ctx context.Context, records []entity.CombinedRecord) error
}

// Pipeline drives one full extract-transform-load run.
type Pipeline struct {
	products    ProductExtractor
	orders      OrderExtractor
	transformer Transformer
	loader      Loader
	reports     ReportSaver
}

// New creates a new instance of Pipeline. reports may be nil when no
// report sink is configured.
func New(products ProductExtractor, orders OrderExtractor, transformer Transformer, loader Loader, reports ReportSaver) *Pipeline {
	return &Pipeline{
		products:    products,
		orders:      orders,
		transformer: transformer,
		loader:      loader,
		reports:     reports,
	}
}

// Run executes the pipeline end to end: both extractors in parallel, then
// transform, then load. Any stage failure is logged and returned; there is
// no partial-success mode.
func (p *Pipeline) Run(ctx context.Context) error {
	log.Info().Msg("Starting data pipeline execution")

	productCh := make(chan struct {
		Products []entity.APIProduct
		Error    error
	}, 1)

	orderCh := make(chan struct {
		Orders []entity.Order
		Error  error
	}, 1)

	go func() {
		products, err := p.products.Fetch(ctx)
		productCh <- struct {
			Products []entity.APIProduct
			Error    error
		}{Products: products, Error: err}
	}()

	go func() {
		orders, err := p.orders.Fetch()
		orderCh <- struct {
			Orders []entity.Order
			Error  error
		}{Orders: orders, Error: err}
	}()

	productResult := <-productCh
	orderResult := <-orderCh

	if productResult.Error != nil {
		log.Error().Err(productResult.Error).Msg("Pipeline execution failed")
		return productResult.Error
	}
	if orderResult.Error != nil {
		log.Error().Err(orderResult.Error).Msg("Pipeline execution failed")
		return orderResult.Error
	}

	if len(productResult.Products) == 0 && len(orderResult.Orders) == 0 {
		log.Error().Msg("No data extracted; pipeline aborted")
		return ErrNoData
	}

	transformed, err := p.transformer.Transform(productResult.Products, orderResult.Orders)
	if err != nil {
		log.Error().Err(err).Msg("Pipeline execution failed")
		return err
	}

	if len(transformed) == 0 {
		log.Error().Msg("No data to load; pipeline aborted")
		return ErrNothingToLoad
	}

	if err := p.loader.Load(ctx, transformed); err != nil {
		log.Error().Err(err).Msg("Pipeline execution failed")
		return err
	}

	if p.reports != nil {
		if err := p.reports.SaveReport(ctx, transformed); err != nil {
			log.Error().Err(err).Msg("Pipeline execution failed")
			return err
		}
		log.Info().Msgf("Saved %d report records to the database", len(transformed))
	}

	log.Info().Msg("Data pipeline completed successfully")
	return nil
}

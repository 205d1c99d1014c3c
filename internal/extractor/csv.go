package extractor

import (
	"math"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"business-pipeline/internal/config"
	"business-pipeline/internal/entity"
)

// orderBatchSize is the fixed number of simulated orders per run.
const orderBatchSize = 50

// CSVExtractor generates the simulated customer order batch. Each batch is
// written to the sample CSV and read back before returning, so the shape
// the pipeline sees is exactly the shape the file format preserves.
type CSVExtractor struct {
	cfg *config.Config
}

// NewCSVExtractor creates a new instance of CSVExtractor.
func NewCSVExtractor(cfg *config.Config) *CSVExtractor {
	return &CSVExtractor{cfg: cfg}
}

// Fetch returns exactly 50 simulated orders with ids 101..150.
func (e *CSVExtractor) Fetch() ([]entity.Order, error) {
	log.Info().Msg("Initiating CSV data extraction")

	today := time.Now()
	yearAgo := today.AddDate(-1, 0, 0)

	orders := make([]entity.Order, 0, orderBatchSize)
	for i := 0; i < orderBatchSize; i++ {
		orders = append(orders, entity.Order{
			OrderID:      101 + i,
			CustomerName: gofakeit.Name(),
			OrderAmount:  math.Round(gofakeit.Float64Range(50.0, 500.0)*100) / 100,
			OrderDate:    gofakeit.DateRange(yearAgo, today).Format("2006-01-02"),
		})
	}

	if err := e.writeSample(orders); err != nil {
		log.Error().Err(err).Msg("CSV extraction failed")
		return nil, &ExtractionError{Source: "csv", Err: err}
	}

	readBack, err := e.readSample()
	if err != nil {
		log.Error().Err(err).Msg("CSV extraction failed")
		return nil, &ExtractionError{Source: "csv", Err: err}
	}

	log.Info().Msgf("Successfully extracted %d order records from CSV", len(readBack))
	return readBack, nil
}

func (e *CSVExtractor) writeSample(orders []entity.Order) error {
	f, err := os.Create(e.cfg.Output.SamplePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&orders, f)
}

func (e *CSVExtractor) readSample() ([]entity.Order, error) {
	f, err := os.Open(e.cfg.Output.SamplePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var orders []entity.Order
	if err := gocsv.UnmarshalFile(f, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

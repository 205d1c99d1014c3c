package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"business-pipeline/internal/config"
	"business-pipeline/internal/entity"
)

// LoadError wraps a failure to deliver the reporting table.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading to %s failed: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// PublishError wraps a failure to publish loaded records to the
// reporting topic. The output file is already written when it occurs.
type PublishError struct {
	Topic string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing to %s failed: %v", e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// RecordPublisher is the subset of *kafka.Writer the loader needs.
type RecordPublisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// CSVLoader writes the reporting table to the configured output file,
// overwriting any previous run. writer may be nil to disable the Kafka
// publish of the loaded records.
type CSVLoader struct {
	cfg    *config.Config
	writer RecordPublisher
}

// NewCSVLoader creates a new instance of CSVLoader.
func NewCSVLoader(cfg *config.Config, writer RecordPublisher) *CSVLoader {
	return &CSVLoader{cfg: cfg, writer: writer}
}

// Load writes header plus one row per record to the output path. The file
// is only considered delivered when fully written and closed; any failure
// surfaces as a *LoadError.
func (l *CSVLoader) Load(ctx context.Context, records []entity.CombinedRecord) error {
	log.Info().Msg("Initiating data loading")

	f, err := os.Create(l.cfg.Output.Path)
	if err != nil {
		log.Error().Err(err).Msg("Data loading failed")
		return &LoadError{Path: l.cfg.Output.Path, Err: err}
	}

	if err := gocsv.MarshalFile(&records, f); err != nil {
		f.Close()
		log.Error().Err(err).Msg("Data loading failed")
		return &LoadError{Path: l.cfg.Output.Path, Err: err}
	}

	if err := f.Close(); err != nil {
		log.Error().Err(err).Msg("Data loading failed")
		return &LoadError{Path: l.cfg.Output.Path, Err: err}
	}

	log.Info().Msgf("Data successfully saved to %s", l.cfg.Output.Path)

	if l.writer != nil {
		if err := l.publishRecords(ctx, records); err != nil {
			log.Error().Err(err).Msg("Publishing report records failed")
			return &PublishError{Topic: l.cfg.Kafka.Topic, Err: err}
		}
		log.Info().Msgf("Published %d report records to %s", len(records), l.cfg.Kafka.Topic)
	}

	return nil
}

func (l *CSVLoader) publishRecords(ctx context.Context, records []entity.CombinedRecord) error {
	msgs := make([]kafka.Message, 0, len(records))
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(fmt.Sprintf("report-%d", record.OrderID)),
			Value: payload,
		})
	}
	return l.writer.WriteMessages(ctx, msgs...)
}

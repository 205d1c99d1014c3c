package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"golang.org/x/time/rate"

	"business-pipeline/internal/api"
	"business-pipeline/internal/config"
	"business-pipeline/internal/extractor"
	"business-pipeline/internal/loader"
	"business-pipeline/internal/pipeline"
	"business-pipeline/internal/repository"
	"business-pipeline/internal/transformer"
	"business-pipeline/migrations"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msg("Connected to report database")
				return db, nil
			}
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to report database", i+1)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to report database after retries: %v", err)
}

func main() {
	serve := flag.Bool("serve", false, "run as an HTTP service instead of a one-shot job")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Log lines go to both the console and the persistent pipeline log.
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal().Err(err).Msgf("Failed to open log file %s", cfg.Log.File)
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(os.Stdout, logFile)).With().Timestamp().Logger()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
		})
	}

	var kafkaWriter *kafka.Writer
	var publisher loader.RecordPublisher
	if cfg.Kafka.Enabled {
		kafkaWriter = config.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = kafkaWriter
	}

	// log.Fatal skips defers, so resources are released explicitly on
	// every exit path.
	closeResources := func() {
		if kafkaWriter != nil {
			kafkaWriter.Close()
		}
		logFile.Close()
	}

	var reports pipeline.ReportSaver
	if cfg.Database.DSN != "" {
		db, err := connectDB(cfg.Database.DSN)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to report database")
			closeResources()
			os.Exit(1)
		}
		if err := migrations.AutoMigrateReports(3, db); err != nil {
			log.Error().Err(err).Msg("Failed to migrate combined_orders table")
			closeResources()
			os.Exit(1)
		}
		reports = repository.NewReportRepository(db)
	}

	p := pipeline.New(
		extractor.NewAPIExtractor(cfg, rdb),
		extractor.NewCSVExtractor(cfg),
		transformer.New(),
		loader.NewCSVLoader(cfg, publisher),
		reports,
	)

	if *serve {
		runServer(cfg, p)
		return
	}

	if code := runOnce(context.Background(), p, closeResources); code != 0 {
		os.Exit(code)
	}
}

// runOnce executes a single pipeline run and releases resources before
// returning the process exit code.
func runOnce(ctx context.Context, p *pipeline.Pipeline, cleanup func()) int {
	defer cleanup()
	if err := p.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Pipeline run failed")
		return 1
	}
	return 0
}

func runServer(cfg *config.Config, p *pipeline.Pipeline) {
	pipelineHandler := api.NewPipelineHandler(p)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(1),
				Burst:     3,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.POST("/pipeline/runs", pipelineHandler.RunPipeline)
	e.GET("/pipeline/health", pipelineHandler.Health)

	e.Logger.Fatal(e.Start(cfg.Server.Addr))
}

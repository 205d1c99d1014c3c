package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"business-pipeline/internal/config"
	"business-pipeline/internal/entity"
)

const productCacheKey = "product-cache"

// APIExtractor fetches product records from the store API.
type APIExtractor struct {
	cfg    *config.Config
	client *http.Client
	rdb    *redis.Client
}

// NewAPIExtractor creates a new instance of APIExtractor. rdb may be nil
// to disable the product cache.
func NewAPIExtractor(cfg *config.Config, rdb *redis.Client) *APIExtractor {
	return &APIExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.API.Timeout},
		rdb:    rdb,
	}
}

// Fetch retrieves the product table, retrying transient failures with
// exponential backoff. On retry exhaustion the last underlying error is
// returned; no partial or cached data stands in for a failed fetch.
func (e *APIExtractor) Fetch(ctx context.Context) ([]entity.APIProduct, error) {
	log.Info().Msg("Initiating API data extraction")

	if products, ok := e.fromCache(ctx); ok {
		log.Info().Msgf("Serving %d product records from cache", len(products))
		return products, nil
	}

	var products []entity.APIProduct
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.API.URL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", e.cfg.API.UserAgent)

		resp, err := e.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, e.cfg.API.URL)
		}

		products = nil
		return json.NewDecoder(resp.Body).Decode(&products)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.API.RetryBaseDelay
	b.MaxInterval = e.cfg.API.RetryMaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.cfg.API.RetryMaxAttempts-1)), ctx))
	if err != nil {
		log.Error().Err(err).Msg("API extraction failed")
		return nil, &ExtractionError{Source: "api", Err: err}
	}

	log.Info().Msgf("Successfully extracted %d product records from API", len(products))
	e.toCache(ctx, products)
	return products, nil
}

func (e *APIExtractor) fromCache(ctx context.Context) ([]entity.APIProduct, bool) {
	if e.rdb == nil {
		return nil, false
	}
	cached, err := e.rdb.Get(ctx, productCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("Error reading product cache")
		}
		return nil, false
	}
	var products []entity.APIProduct
	if err := json.Unmarshal([]byte(cached), &products); err != nil {
		log.Warn().Err(err).Msg("Error unmarshalling cached products")
		return nil, false
	}
	if len(products) == 0 {
		return nil, false
	}
	return products, true
}

func (e *APIExtractor) toCache(ctx context.Context, products []entity.APIProduct) {
	if e.rdb == nil || len(products) == 0 {
		return
	}
	payload, err := json.Marshal(products)
	if err != nil {
		log.Warn().Err(err).Msg("Error marshalling products for cache")
		return
	}
	if err := e.rdb.Set(ctx, productCacheKey, payload, e.cfg.Redis.CacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("Error writing product cache")
	}
}

package aqi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Elyson25/clean-air-now/internal/config"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/pkg/e"

	"github.com/sony/gobreaker"
)

// Reading is one current air-quality answer from the provider.
type Reading struct {
	AQI        int                `json:"aqi"` // 1 (Good) .. 5 (Very Poor)
	Components map[string]float64 `json:"components"`
	ObservedAt time.Time          `json:"observed_at"`
}

// Provider answers "what is the AQI at this point right now".
//
// A nil Reading with a nil error means the provider has no data. Callers
// must treat that as a normal state: the provider being down is expected,
// not exceptional.
type Provider interface {
	Current(ctx context.Context, point domain.GeoPoint) (*Reading, error)
}

// OpenWeatherClient implements Provider against the OpenWeather air_pollution
// endpoint. Upstream failures trip a circuit breaker so a dead provider does
// not slow every scheduler run to its timeout.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewOpenWeatherClient(cfg config.OpenWeatherConfig, logger *slog.Logger) *OpenWeatherClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		circuit: cb,
		logger:  logger,
	}
}

type airPollutionResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
	} `json:"list"`
}

func (c *OpenWeatherClient) Current(ctx context.Context, point domain.GeoPoint) (*Reading, error) {
	const op = "aqi.OpenWeather.Current"

	if !point.Valid() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: api key is not configured", op)
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", point.Lat))
	values.Set("lon", fmt.Sprintf("%f", point.Lon))
	values.Set("appid", c.apiKey)
	fullURL := c.baseURL + "?" + values.Encode()

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.fetch(ctx, fullURL)
	})
	if err != nil {
		// No data is a valid answer; the caller decides what absence means.
		c.logger.Warn("aqi fetch failed",
			slog.Float64("lat", point.Lat),
			slog.Float64("lon", point.Lon),
			slog.Any("error", err),
		)
		return nil, nil
	}

	payload := result.(*airPollutionResponse)
	if len(payload.List) == 0 {
		return nil, nil
	}

	item := payload.List[0]
	if item.Main.AQI < 1 || item.Main.AQI > 5 {
		c.logger.Warn("aqi out of range, discarding", slog.Int("aqi", item.Main.AQI))
		return nil, nil
	}

	observedAt := time.Unix(item.Dt, 0).UTC()
	if item.Dt == 0 {
		observedAt = time.Now().UTC()
	}

	return &Reading{
		AQI:        item.Main.AQI,
		Components: item.Components,
		ObservedAt: observedAt,
	}, nil
}

func (c *OpenWeatherClient) fetch(ctx context.Context, fullURL string) (*airPollutionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider status %d", e.ErrUpstream, resp.StatusCode)
	}

	var payload airPollutionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", e.ErrUpstream, err)
	}

	return &payload, nil
}

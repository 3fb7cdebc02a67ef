package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geo-tracker/internal/geoip"
	"geo-tracker/internal/locationlog"
	"geo-tracker/internal/metrics"
	"geo-tracker/internal/models"

	"github.com/rs/zerolog"
)

// timestampLayout matches JavaScript's Date.toISOString once the time is in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// LocationService contains the business logic for recording locations
type LocationService struct {
	writer   LocationWriter
	resolver GeoResolver
	retries  int
	now      func() time.Time
}

// LocationWriter interface for dependency injection
type LocationWriter interface {
	Append(ctx context.Context, record models.LocationRecord) error
}

// GeoResolver interface for dependency injection
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) (*models.Geolocation, error)
}

// NewLocationService creates a new location service. A conflicting append is
// retried with a fresh fetch at most retries times.
func NewLocationService(writer LocationWriter, resolver GeoResolver, retries int) *LocationService {
	if retries < 0 {
		retries = 0
	}
	return &LocationService{
		writer:   writer,
		resolver: resolver,
		retries:  retries,
		now:      time.Now,
	}
}

// SaveLocation records coordinates reported by the browser
func (s *LocationService) SaveLocation(ctx context.Context, lat, lon float64) (*models.LocationRecord, error) {
	record := models.LocationRecord{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: s.timestamp(),
		Source:    models.SourceBrowser,
	}

	if err := s.append(ctx, record); err != nil {
		return nil, fmt.Errorf("service: failed to save location: %w", err)
	}
	return &record, nil
}

// SaveIPLocation resolves ip to a location and records it. Lookups without
// coordinates are rejected rather than stored partially.
func (s *LocationService) SaveIPLocation(ctx context.Context, ip string) (*models.LocationRecord, error) {
	geo, err := s.resolver.Resolve(ctx, ip)
	if errors.Is(err, geoip.ErrUnresolvable) {
		return nil, fmt.Errorf("service: %w", locationlog.NewError(locationlog.KindInvalidInput, "could not determine coordinates for ip "+ip, err))
	}
	if err != nil {
		return nil, fmt.Errorf("service: %w", locationlog.NewError(locationlog.KindUpstreamUnavailable, "ip lookup failed", err))
	}
	if geo == nil || geo.Latitude == nil || geo.Longitude == nil {
		return nil, fmt.Errorf("service: %w", locationlog.NewError(locationlog.KindInvalidInput, "could not determine coordinates for ip "+ip, nil))
	}

	record := models.LocationRecord{
		Latitude:  *geo.Latitude,
		Longitude: *geo.Longitude,
		Timestamp: s.timestamp(),
		Source:    models.SourceIP,
		City:      geo.City,
		Region:    geo.Region,
		Country:   geo.Country,
	}

	if err := s.append(ctx, record); err != nil {
		return nil, fmt.Errorf("service: failed to save ip location: %w", err)
	}
	return &record, nil
}

func (s *LocationService) append(ctx context.Context, record models.LocationRecord) error {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	var err error
	for attempt := 0; ; attempt++ {
		err = s.writer.Append(ctx, record)
		if locationlog.KindOf(err) != locationlog.KindConflict || attempt >= s.retries {
			break
		}
		metrics.LocationAppendRetries.Inc()
		logger.Warn().Int("attempt", attempt+1).Msg("location log changed concurrently, retrying append")
	}

	metrics.LocationAppendDuration.WithLabelValues(record.Source).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := locationlog.KindOf(err)
		if kind == "" {
			kind = locationlog.KindUpstreamUnavailable
		}
		metrics.LocationAppends.WithLabelValues(record.Source, string(kind)).Inc()
		return err
	}

	metrics.LocationAppends.WithLabelValues(record.Source, "success").Inc()
	logger.Info().
		Float64("latitude", record.Latitude).
		Float64("longitude", record.Longitude).
		Str("source", record.Source).
		Msg("location saved")
	return nil
}

func (s *LocationService) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

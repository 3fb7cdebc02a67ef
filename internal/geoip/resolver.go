package geoip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geo-tracker/internal/metrics"
	"geo-tracker/internal/models"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the client-side lookup budget is exhausted.
var ErrRateLimited = errors.New("geoip: rate limit exceeded")

// ErrUnresolvable is returned when the address itself has no location: it is
// not an IP address, or the lookup service reports it as reserved or invalid.
var ErrUnresolvable = errors.New("geoip: address cannot be located")

// Resolver looks up the approximate location of an IP address.
type Resolver interface {
	Resolve(ctx context.Context, ip string) (*models.Geolocation, error)
}

// Config configures an IPAPIResolver.
type Config struct {
	BaseURL       string
	APIKey        string
	RatePerMinute int
	Timeout       time.Duration
}

// IPAPIResolver resolves IP addresses with the ipapi.co JSON API.
// The API key is optional; without it the free tier limits apply.
type IPAPIResolver struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

type ipapiResponse struct {
	IP          string   `json:"ip"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	CountryName string   `json:"country_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Error       bool     `json:"error"`
	Reserved    bool     `json:"reserved"`
	Reason      string   `json:"reason"`
}

// NewIPAPIResolver creates a resolver from cfg.
func NewIPAPIResolver(cfg Config) *IPAPIResolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 45
	}

	return &IPAPIResolver{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Resolve returns the geolocation of ip. Coordinates the service cannot
// determine are left nil.
func (r *IPAPIResolver) Resolve(ctx context.Context, ip string) (*models.Geolocation, error) {
	geo, err := r.resolve(ctx, ip)
	if err != nil {
		metrics.GeoIPLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.GeoIPLookups.WithLabelValues("success").Inc()
	return geo, nil
}

func (r *IPAPIResolver) resolve(ctx context.Context, ip string) (*models.Geolocation, error) {
	if net.ParseIP(ip) == nil {
		return nil, fmt.Errorf("%w: invalid IP address %q", ErrUnresolvable, ip)
	}
	if !r.limiter.Allow() {
		return nil, ErrRateLimited
	}

	endpoint := fmt.Sprintf("%s/%s/json/", r.baseURL, url.PathEscape(ip))
	if r.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(r.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("geoip: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoip: failed to query lookup service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoip: lookup service returned status %d", resp.StatusCode)
	}

	var result ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("geoip: failed to decode response: %w", err)
	}
	if result.Error && (result.Reserved || strings.EqualFold(result.Reason, "Invalid IP Address")) {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvable, result.Reason)
	}
	if result.Error {
		return nil, fmt.Errorf("geoip: lookup failed: %s", result.Reason)
	}

	return &models.Geolocation{
		IP:        ip,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
		City:      result.City,
		Region:    result.Region,
		Country:   result.CountryName,
	}, nil
}

package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geo-tracker/internal/locationlog"
	"geo-tracker/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

const githubBreakerName = "github-contents"

// GitHubConfig identifies the repository used as the log store.
type GitHubConfig struct {
	APIURL  string
	Token   string
	Owner   string
	Repo    string
	Branch  string
	Timeout time.Duration
}

// GitHubStore implements locationlog.Store on top of the GitHub contents API.
// The blob SHA of the file is used as the version token.
type GitHubStore struct {
	client *http.Client
	cfg    GitHubConfig
	cb     *gobreaker.CircuitBreaker[any]
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type githubErrorResponse struct {
	Message string `json:"message"`
}

// NewGitHubStore creates a store for the repository described by cfg.
// A missing token is not an error here; calls fail with locationlog.ErrNotConfigured.
func NewGitHubStore(cfg GitHubConfig) *GitHubStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	metrics.CircuitBreakerState.WithLabelValues(githubBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        githubBreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Expected protocol outcomes must not open the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, locationlog.ErrNotFound) ||
				errors.Is(err, locationlog.ErrVersionMismatch) ||
				errors.Is(err, locationlog.ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &GitHubStore{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		cb:     cb,
	}
}

// Get fetches the file at path and its blob SHA
func (s *GitHubStore) Get(ctx context.Context, path string) (*locationlog.Blob, error) {
	result, err := s.execute(func() (any, error) {
		return s.getContent(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return result.(*locationlog.Blob), nil
}

// PutIfMatch creates or updates the file at path. version must be the blob SHA
// of the current file, or empty to create it.
func (s *GitHubStore) PutIfMatch(ctx context.Context, path, content, version, message string) error {
	_, err := s.execute(func() (any, error) {
		return nil, s.putContent(ctx, path, content, version, message)
	})
	return err
}

// Ping checks that the repository is reachable with the configured token
func (s *GitHubStore) Ping(ctx context.Context) error {
	_, err := s.execute(func() (any, error) {
		resp, err := s.do(ctx, http.MethodGet, s.repoURL(), nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, statusError(resp)
		}
		return nil, nil
	})
	return err
}

func (s *GitHubStore) execute(fn func() (any, error)) (any, error) {
	if s.cfg.Token == "" {
		return nil, locationlog.ErrNotConfigured
	}

	result, err := s.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(githubBreakerName, "rejected").Inc()
		return nil, fmt.Errorf("repository: github unavailable: %w", err)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(githubBreakerName, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(githubBreakerName, "success").Inc()
	return result, nil
}

func (s *GitHubStore) getContent(ctx context.Context, path string) (*locationlog.Blob, error) {
	endpoint := s.contentsURL(path)
	if s.cfg.Branch != "" {
		endpoint += "?ref=" + url.QueryEscape(s.cfg.Branch)
	}

	resp, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, locationlog.ErrNotFound
	default:
		return nil, statusError(resp)
	}

	var body contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("repository: failed to decode contents response: %w", err)
	}
	// Files over 1MB come back without inline content.
	if body.Encoding != "base64" {
		return nil, fmt.Errorf("repository: unsupported content encoding %q for %s", body.Encoding, path)
	}

	return &locationlog.Blob{Content: body.Content, Version: body.SHA}, nil
}

func (s *GitHubStore) putContent(ctx context.Context, path, content, version, message string) error {
	payload, err := json.Marshal(putContentRequest{
		Message: message,
		Content: content,
		SHA:     version,
		Branch:  s.cfg.Branch,
	})
	if err != nil {
		return fmt.Errorf("repository: failed to encode contents request: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPut, s.contentsURL(path), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return locationlog.ErrVersionMismatch
	case resp.StatusCode == http.StatusUnprocessableEntity && version == "":
		// The file appeared after we saw a 404, so GitHub wants its sha.
		return locationlog.ErrVersionMismatch
	default:
		return statusError(resp)
	}
}

func (s *GitHubStore) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("repository: github request failed: %w", err)
	}
	return resp, nil
}

func (s *GitHubStore) repoURL() string {
	return fmt.Sprintf("%s/repos/%s/%s", s.cfg.APIURL, url.PathEscape(s.cfg.Owner), url.PathEscape(s.cfg.Repo))
}

func (s *GitHubStore) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.repoURL() + "/contents/" + strings.Join(segments, "/")
}

func statusError(resp *http.Response) error {
	var body githubErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	return &locationlog.StatusError{StatusCode: resp.StatusCode, Message: body.Message}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Package storehttp implements the store contract against the hosted
// backend's REST API. Transport failures of any kind surface as
// store.ErrStoreUnreachable; backend rejections map onto the store's
// sentinel errors.
package storehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/core/store"
)

// Config defines the connection parameters for the backend API.
type Config struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("store base_url is required")
	}
	return nil
}

// Client talks to the backend over HTTP. It implements store.Store.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

// NewClient creates a Client from the configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return &Client{
		base:   cfg.BaseURL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}, nil
}

// apiError is the backend's structured rejection payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toSentinel maps backend rejection codes onto the store's error taxonomy.
func (e apiError) toSentinel(status int) error {
	switch e.Code {
	case "job_not_found":
		return store.ErrJobNotFound
	case "provider_unavailable":
		return store.ErrProviderUnavailable
	case "job_already_assigned":
		return store.ErrJobAlreadyAssigned
	case "invalid_transition":
		return store.ErrInvalidTransition
	case "already_reserved":
		return store.ErrAlreadyReserved
	}
	if status == http.StatusNotFound {
		return store.ErrJobNotFound
	}
	if status == http.StatusConflict {
		return store.ErrAlreadyReserved
	}
	return store.ErrStoreUnreachable
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: backend returned %d", store.ErrStoreUnreachable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		sentinel := ae.toSentinel(resp.StatusCode)
		if ae.Message != "" {
			return fmt.Errorf("%w: %s", sentinel, ae.Message)
		}
		return sentinel
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", store.ErrStoreUnreachable, err)
	}
	return nil
}

func (c *Client) Jobs(ctx context.Context, date time.Time) ([]model.Job, error) {
	q := url.Values{"date": {date.Format("2006-01-02")}}
	var jobs []model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs", q, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) Job(ctx context.Context, id string) (model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, nil, &job); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

type assignRequest struct {
	ProviderID *string `json:"provider_id"`
}

func (c *Client) BindProvider(ctx context.Context, jobID, providerID string) (model.Job, error) {
	req := assignRequest{}
	if providerID != "" {
		req.ProviderID = &providerID
	}
	var job model.Job
	if err := c.do(ctx, http.MethodPost, "/jobs/"+url.PathEscape(jobID)+"/assign", nil, req, &job); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

type statusRequest struct {
	Status model.JobStatus `json:"status"`
}

func (c *Client) SetStatus(ctx context.Context, jobID string, status model.JobStatus) (model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodPatch, "/jobs/"+url.PathEscape(jobID)+"/status", nil, statusRequest{Status: status}, &job); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

func (c *Client) Providers(ctx context.Context, availableOnly bool) ([]model.Provider, error) {
	q := url.Values{}
	if availableOnly {
		q.Set("available_only", "true")
	}
	var providers []model.Provider
	if err := c.do(ctx, http.MethodGet, "/providers", q, nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

type reserveRequest struct {
	JobID string `json:"job_id"`
}

func (c *Client) Reserve(ctx context.Context, providerID, jobID string) error {
	return c.do(ctx, http.MethodPost, "/providers/"+url.PathEscape(providerID)+"/reserve", nil, reserveRequest{JobID: jobID}, nil)
}

func (c *Client) Release(ctx context.Context, providerID string) error {
	return c.do(ctx, http.MethodPost, "/providers/"+url.PathEscape(providerID)+"/release", nil, nil, nil)
}

func (c *Client) Teams(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := c.do(ctx, http.MethodGet, "/teams", nil, nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) Schedule(ctx context.Context, from, to time.Time, providerID, teamID string) ([]model.ScheduleEntry, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.RFC3339))
	}
	if providerID != "" {
		q.Set("provider_id", providerID)
	}
	if teamID != "" {
		q.Set("team_id", teamID)
	}
	var entries []model.ScheduleEntry
	if err := c.do(ctx, http.MethodGet, "/schedule", q, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

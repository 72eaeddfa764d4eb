package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/salvage-search/salvage-tools/internal/registry"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the model search endpoint.
const DefaultEndpoint = "https://iaai.com/AdvancedSearch/GetVehicleModels"

const defaultTimeout = 30 * time.Second

const (
	fieldModelName = "AC_Model_Name"
	fieldModelID   = "Salvage_Model_ID"
)

// ModelRecord is one entry of the endpoint's JSON array response. A null
// Salvage_Model_ID is kept as a zero ID; only an absent key is an error.
type ModelRecord struct {
	Name *string
	ID   registry.ID

	hasID bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ModelRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields[fieldModelName]; ok {
		if err := json.Unmarshal(raw, &r.Name); err != nil {
			return fmt.Errorf("decoding %s: %w", fieldModelName, err)
		}
	}
	if raw, ok := fields[fieldModelID]; ok {
		r.hasID = true
		if err := json.Unmarshal(raw, &r.ID); err != nil {
			return fmt.Errorf("decoding %s: %w", fieldModelID, err)
		}
	}
	return nil
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search endpoint returned status %d", e.Code)
}

// ModelSource returns the model records for one make.
type ModelSource interface {
	FetchModels(ctx context.Context, makeID registry.ID) ([]ModelRecord, error)
}

// Client queries the model search endpoint.
type Client struct {
	endpoint    string
	userAgent   string
	runAndDrive bool
	timeout     time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithEndpoint overrides the search endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(cl *Client) {
		cl.endpoint = endpoint
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithRunAndDrive sets the run-and-drive filter sent with every request.
func WithRunAndDrive(v bool) Option {
	return func(cl *Client) {
		cl.runAndDrive = v
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// It has no effect when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithRate spaces requests to at most perSecond per second. Zero or a
// negative value disables pacing.
func WithRate(perSecond float64) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = nil
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// FetchModels posts one search request for makeID and decodes the response.
func (c *Client) FetchModels(ctx context.Context, makeID registry.ID) ([]ModelRecord, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for request slot: %w", err)
		}
	}

	form := url.Values{}
	form.Set("SelectedMakes", makeID.String())
	form.Set("IsSelectedRunAndDrive", formBool(c.runAndDrive))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var records []ModelRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("parsing models JSON: %w", err)
	}
	for i, rec := range records {
		if rec.Name == nil {
			return nil, fmt.Errorf("model record %d: missing %s", i, fieldModelName)
		}
		if !rec.hasID {
			return nil, fmt.Errorf("model record %d (%s): missing %s", i, *rec.Name, fieldModelID)
		}
	}
	return records, nil
}

// formBool renders a boolean the way the search form submits it.
func formBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

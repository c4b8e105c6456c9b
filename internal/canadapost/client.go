package canadapost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/telemetry"
)

const (
	DefaultBaseURL = "https://ws1.postescanada-canadapost.ca"
	findPath       = "/AddressComplete/Interactive/Find/v2.10/json3.ws"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Client implements Provider against the AddressComplete HTTP API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// ClientConfig contains configuration for the AddressComplete client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string             // Optional: defaults to DefaultBaseURL
	Timeout    time.Duration      // Optional: defaults to 10s
	HTTPClient *http.Client       // Optional: overrides Timeout
	Logger     *slog.Logger       // Optional: defaults to slog.Default()
	Metrics    *telemetry.Metrics // Optional
}

// NewClient creates a new AddressComplete client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

type findResponse struct {
	Items *[]findItem `json:"Items"`
}

type findItem struct {
	ID          string `json:"Id"`
	Type        string `json:"Type"`
	Text        string `json:"Text"`
	Description string `json:"Description"`

	// Populated only on error responses.
	Error      string `json:"Error"`
	Cause      string `json:"Cause"`
	Resolution string `json:"Resolution"`
}

// Find returns the raw suggestions for params.SearchTerm.
func (c *Client) Find(ctx context.Context, params FindParams) ([]address.RawSuggestion, error) {
	if strings.TrimSpace(params.SearchTerm) == "" {
		return nil, ErrEmptySearchTerm
	}

	logger := c.logger.With(
		"search_term", params.SearchTerm,
		"country", params.Country,
	)
	logger.Debug("finding address suggestions")

	start := time.Now()
	items, err := c.find(ctx, params)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.ObserveLookup(telemetry.OutcomeFailure, elapsed, 0)
		logger.Warn("address lookup failed", "error", err, "duration", elapsed)
		return nil, err
	}

	c.metrics.ObserveLookup(telemetry.OutcomeSuccess, elapsed, len(items))
	logger.Debug("address suggestions fetched", "count", len(items), "duration", elapsed)

	return items, nil
}

func (c *Client) find(ctx context.Context, params FindParams) ([]address.RawSuggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.findURL(params), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("addresscomplete API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result findResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Items == nil {
		return nil, errors.New("failed to parse response: missing Items")
	}

	items := *result.Items
	if len(items) == 1 && items[0].Error != "" {
		return nil, &APIError{
			Number:      items[0].Error,
			Description: items[0].Description,
			Cause:       items[0].Cause,
			Resolution:  items[0].Resolution,
		}
	}

	out := make([]address.RawSuggestion, 0, len(items))
	for _, it := range items {
		out = append(out, address.RawSuggestion{
			ID:          it.ID,
			Text:        it.Text,
			Description: it.Description,
		})
	}
	return out, nil
}

func (c *Client) findURL(params FindParams) string {
	country := params.Country
	if country == "" {
		country = DefaultCountry
	}
	language := params.Language
	if language == "" {
		language = DefaultLanguage
	}
	searchFor := params.SearchFor
	if searchFor == "" {
		searchFor = DefaultSearchFor
	}

	lastID := ""
	if params.LastID.Valid {
		lastID = params.LastID.ID
	}

	q := url.Values{}
	q.Set("Key", c.apiKey)
	q.Set("SearchTerm", params.SearchTerm)
	q.Set("Country", country)
	q.Set("LanguagePreference", language)
	q.Set("LastId", lastID)
	q.Set("SearchFor", searchFor)

	return c.baseURL + findPath + "?" + q.Encode()
}

// Package ticketing talks to the Eventbrite-compatible v3 ticketing API and
// keeps the local store in sync with it.
package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/j-veylop/boxoffice-tui/internal/cache"
	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
)

var (
	// ErrUnauthorized is returned when the API rejects the token.
	ErrUnauthorized = errors.New("ticketing API rejected the token")
	// ErrRateLimited is returned when the API keeps answering 429 after retries.
	ErrRateLimited = errors.New("ticketing API rate limit exceeded")
)

// APIError is a non-retryable error response.
type APIError struct {
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ticketing API error (status %d): %s", e.StatusCode, e.Body)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	// RateLimit is the maximum requests per second sent to the API.
	RateLimit      float64
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Client is a rate-limited, caching ticketing API client.
type Client struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	cache          *cache.Cache
	baseURL        string
	token          string
	maxAttempts    int
	initialBackoff time.Duration
}

// NewClient creates a client. A nil cache disables response caching.
func NewClient(cfg ClientConfig, c *cache.Cache) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}

	return &Client{
		httpClient:     cfg.HTTPClient,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cache:          c,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
	}
}

type organizationsResponse struct {
	Organizations []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"organizations"`
}

type textField struct {
	Text string `json:"text"`
}

type dateField struct {
	Local string `json:"local"`
}

type eventsResponse struct {
	Events []struct {
		Capacity *int      `json:"capacity"`
		Name     textField `json:"name"`
		Start    dateField `json:"start"`
		End      dateField `json:"end"`
		ID       string    `json:"id"`
		Status   string    `json:"status"`
		URL      string    `json:"url"`
		IsFree   bool      `json:"is_free"`
	} `json:"events"`
}

type attendeesResponse struct {
	Attendees []struct {
		Profile struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Email     string `json:"email"`
		} `json:"profile"`
		Costs struct {
			Gross struct {
				Value int64 `json:"value"`
			} `json:"gross"`
		} `json:"costs"`
		ID              string `json:"id"`
		Created         string `json:"created"`
		Status          string `json:"status"`
		TicketClassName string `json:"ticket_class_name"`
		Quantity        int    `json:"quantity"`
		CheckedIn       bool   `json:"checked_in"`
	} `json:"attendees"`
}

// ListOrganizations returns the organizations the token can access.
func (c *Client) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	var resp organizationsResponse
	if err := c.getCached(ctx, cache.Key("organizations", "me"), "/users/me/organizations/", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	orgs := make([]models.Organization, 0, len(resp.Organizations))
	for _, o := range resp.Organizations {
		orgs = append(orgs, models.Organization{ID: o.ID, Name: o.Name})
	}
	return orgs, nil
}

// ListEvents returns every event of an organization, newest first.
func (c *Client) ListEvents(ctx context.Context, orgID string) ([]models.Event, error) {
	params := url.Values{}
	params.Set("status", "all")
	params.Set("order_by", "start_desc")

	var resp eventsResponse
	path := "/organizations/" + url.PathEscape(orgID) + "/events/"
	if err := c.getCached(ctx, cache.Key("events", orgID), path, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]models.Event, 0, len(resp.Events))
	for _, e := range resp.Events {
		ev := models.Event{
			ID:     e.ID,
			OrgID:  orgID,
			Name:   e.Name.Text,
			Status: e.Status,
			URL:    e.URL,
			IsFree: e.IsFree,
			Start:  parseLocal(e.Start.Local),
			End:    parseLocal(e.End.Local),
		}
		if e.Capacity != nil {
			ev.Capacity = *e.Capacity
		}
		events = append(events, ev)
	}
	return events, nil
}

// ListAttendees returns the attending ticket holders of an event.
func (c *Client) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	params := url.Values{}
	params.Set("status", "attending")

	var resp attendeesResponse
	path := "/events/" + url.PathEscape(eventID) + "/attendees/"
	if err := c.getCached(ctx, cache.Key("attendees", eventID), path, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}

	attendees := make([]models.Attendee, 0, len(resp.Attendees))
	for _, a := range resp.Attendees {
		att := models.Attendee{
			ID:         a.ID,
			EventID:    eventID,
			FirstName:  a.Profile.FirstName,
			LastName:   a.Profile.LastName,
			Email:      a.Profile.Email,
			TicketType: a.TicketClassName,
			Status:     a.Status,
			Quantity:   a.Quantity,
			GrossCents: a.Costs.Gross.Value,
			CheckedIn:  a.CheckedIn,
		}
		if t, err := time.Parse(time.RFC3339, a.Created); err == nil {
			att.Created = t
		}
		attendees = append(attendees, att)
	}
	return attendees, nil
}

// getCached serves path from the cache when fresh, otherwise fetches and
// caches the raw response body.
func (c *Client) getCached(ctx context.Context, key, path string, params url.Values, out any) error {
	if c.cache != nil {
		if body, _, ok := c.cache.Get(key); ok {
			if err := json.Unmarshal(body, out); err == nil {
				logger.Debug("ticketing cache hit", "key", key)
				return nil
			}
		}
	}

	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(key, body); err != nil {
			logger.Warn("failed to cache ticketing response", "key", key, "error", err)
		}
	}
	return nil
}

// get performs a GET with rate limiting and retries 429 and 5xx responses
// with exponential backoff.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var lastErr error
	backoff := c.initialBackoff
	for attempt := range c.maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retry, err := c.do(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		logger.Debug("retrying ticketing request", "path", path, "attempt", attempt+1, "error", err)
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, endpoint string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, true, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	default:
		return nil, false, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}

// parseLocal parses the API's naive local timestamp ("2025-03-14T19:00:00")
// as wall-clock time.
func parseLocal(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
)

// maxResponseBytes bounds a single day's response body
const maxResponseBytes = 8 << 20

// ErrUnexpectedStatus is returned for non-200 responses
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// Client fetches grouped sales from the ticketing API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	recorder   *metrics.Recorder
}

// NewClient creates an API client. A zero rate limit disables limiting.
func NewClient(cfg config.UpstreamConfig, recorder *metrics.Recorder) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:  rate.NewLimiter(limit, burst),
		recorder: recorder,
	}
}

// Fetch implements Source. The request URL carries the API key and is never
// put on the span.
func (c *Client) Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "upstream", "fetch",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.AttrVenueID, venueID),
		telemetry.WithAttribute(telemetry.AttrDate, date),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		err = fmt.Errorf("rate limit wait: %w", err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	items, err := c.fetch(ctx, venueID, date)
	c.recorder.ObserveUpstream(outcome(err), time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.AttrItems, len(items))
	return items, nil
}

func (c *Client) fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(venueID, date), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "salesdash/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return decodeItems(body)
}

func (c *Client) requestURL(venueID int, date string) string {
	q := url.Values{}
	q.Set("fecha", date)
	q.Set("sucursal", strconv.Itoa(venueID))
	return fmt.Sprintf("%s/X-API-KEY/%s?%s", c.baseURL, url.PathEscape(c.apiKey), q.Encode())
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}

// decodeItems accepts a bare item array, an object with an items field, or
// null.
func decodeItems(body []byte) ([]sales.LineItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []sales.LineItem{}, nil
	}

	var wire []wireItem
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	case '{':
		var envelope struct {
			Items []wireItem `json:"items"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		wire = envelope.Items
	default:
		return nil, fmt.Errorf("failed to decode response: unexpected payload starting with %q", body[0])
	}

	items := make([]sales.LineItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, w.toLineItem())
	}
	return items, nil
}

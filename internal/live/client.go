package live

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
)

// Client is the HTTP implementation of Source and Mutator against the
// hosted data service.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  zerolog.Logger
}

// NewClient creates a client for the service at baseURL. The timeout
// bounds every request; a fetch that exceeds it is reported as a failure
// so the provider can fall back to the local snapshot.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "live").Logger(),
	}
}

// HealthURL returns the endpoint the connectivity monitor probes.
func (c *Client) HealthURL() string {
	return c.baseURL + "/healthz"
}

// Fetch runs one domain query. An empty result set is a valid success;
// transport errors, timeouts, and non-2xx responses are failures.
func (c *Client) Fetch(ctx context.Context, q Query) (ledger.Records, error) {
	if q.UserID == "" {
		return ledger.Records{}, fmt.Errorf("fetch %s: user id cannot be empty", q.Domain)
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s/%s", c.baseURL, url.PathEscape(q.UserID), q.Domain)
	if params := rangeParams(q); params != "" {
		endpoint += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ledger.Records{}, fmt.Errorf("fetch %s: %w", q.Domain, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return ledger.Records{}, fmt.Errorf("fetch %s: %w", q.Domain, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ledger.Records{}, fmt.Errorf("fetch %s: backend returned %s", q.Domain, resp.Status)
	}

	records, err := decodeRecords(q.Domain, resp.Body)
	if err != nil {
		return ledger.Records{}, fmt.Errorf("fetch %s: decode: %w", q.Domain, err)
	}

	c.logger.Debug().
		Str("user_id", q.UserID).
		Stringer("domain", q.Domain).
		Int("records", records.Len()).
		Msg("live fetch succeeded")
	return records, nil
}

// Apply sends one mutation. The mutation ID travels as the idempotency
// key so an at-least-once replay is safe for the backend to deduplicate.
func (c *Client) Apply(ctx context.Context, m Mutation) error {
	endpoint := fmt.Sprintf("%s/v1/users/%s/%s/mutations", c.baseURL, url.PathEscape(m.UserID), m.Domain)

	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("apply mutation %s: %w", m.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("apply mutation %s: %w", m.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", m.ID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("apply mutation %s: %w", m.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("apply mutation %s: backend returned %s", m.ID, resp.Status)
	}
	return nil
}

// rangeParams encodes the optional date range.
func rangeParams(q Query) string {
	vals := url.Values{}
	if !q.From.IsZero() {
		vals.Set("from", q.From.Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		vals.Set("to", q.To.Format(time.RFC3339))
	}
	return vals.Encode()
}

// decodeRecords parses the response array into the slice for the
// queried domain.
func decodeRecords(domain ledger.Domain, body io.Reader) (ledger.Records, error) {
	dec := json.NewDecoder(body)
	var records ledger.Records
	switch domain {
	case ledger.DomainExpenses:
		if err := dec.Decode(&records.Expenses); err != nil {
			return ledger.Records{}, err
		}
	case ledger.DomainIncome:
		if err := dec.Decode(&records.Income); err != nil {
			return ledger.Records{}, err
		}
	case ledger.DomainCategories:
		if err := dec.Decode(&records.Categories); err != nil {
			return ledger.Records{}, err
		}
	case ledger.DomainForValues:
		if err := dec.Decode(&records.ForValues); err != nil {
			return ledger.Records{}, err
		}
	case ledger.DomainCards:
		if err := dec.Decode(&records.Cards); err != nil {
			return ledger.Records{}, err
		}
	default:
		return ledger.Records{}, fmt.Errorf("unknown domain %v", domain)
	}
	return records, nil
}

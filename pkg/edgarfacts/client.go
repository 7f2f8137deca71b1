// Package edgarfacts fetches and parses EDGAR Company Facts JSON-LD, the
// fact source the statement engine ingests when a filing's own linkbases are
// not supplied.
package edgarfacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/statement-engine/internal/resilience"
)

const (
	defaultBaseURL   = "https://data.sec.gov"
	companyFactsPath = "/api/xbrl/companyfacts/CIK%010s.json"
)

// Options configures the client.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// Client downloads company facts with per-host rate limiting and retry.
type Client struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// NewClient creates a client. SEC fair-access guidance allows 10 req/s.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "statement-engine/1.0"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	return &Client{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(10, 10),
	}
}

// CompanyFacts fetches and parses the company facts document for a CIK.
func (c *Client) CompanyFacts(ctx context.Context, cik string) (*Facts, error) {
	url := c.opts.BaseURL + fmt.Sprintf(companyFactsPath, cik)
	body, err := c.download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	facts, err := Parse(body)
	if err != nil {
		return nil, eris.Wrapf(err, "edgarfacts: CIK %s", cik)
	}
	return facts, nil
}

// CompanyFactsRaw fetches the company facts document without parsing it,
// for callers that cache the raw bytes.
func (c *Client) CompanyFactsRaw(ctx context.Context, cik string) ([]byte, error) {
	url := c.opts.BaseURL + fmt.Sprintf(companyFactsPath, cik)
	body, err := c.download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "edgarfacts: read CIK %s", cik)
	}
	return data, nil
}

func (c *Client) download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "edgarfacts: create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = c.opts.MaxRetries
	cfg.InitialBackoff = time.Second
	cfg.OnRetry = func(attempt int, err error) {
		zap.L().Warn("edgarfacts: request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (io.ReadCloser, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "edgarfacts: rate limiter wait")
		}

		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			return nil, resilience.NewTransientError(
				eris.Errorf("edgarfacts: http %d from %s", resp.StatusCode, url), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, eris.Errorf("edgarfacts: unexpected status %d from %s", resp.StatusCode, url)
		}
		return resp.Body, nil
	})
}

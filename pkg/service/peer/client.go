package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/utils/safe"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseSize bounds how much of a peer response is read
	maxResponseSize = 64 << 20
)

// Client talks to the sync endpoints of another instance
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    *time.Duration
}

var _ interfaces.PeerClient = &Client{}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = &d
	}
}

// ImportResponse is the body returned by a peer's /sync/import
type ImportResponse struct {
	Status  string `json:"status"`
	Merged  int    `json:"merged"`
	Skipped int    `json:"skipped"`
	Invalid int    `json:"invalid"`
}

// New creates a client for the instance at baseURL (e.g. http://10.0.0.2:5000)
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid peer URL", goerr.V("url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("peer URL must be http or https", goerr.V("url", baseURL))
	}
	if u.Host == "" {
		return nil, goerr.New("peer URL must have a host", goerr.V("url", baseURL))
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	// A caller supplied client may be shared, so the timeout goes on a copy
	if c.timeout != nil {
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) Name() string {
	return c.baseURL.String()
}

// Export fetches the peer's full knowledge bundle
func (c *Client) Export(ctx context.Context) (*model.SyncBundle, error) {
	var bundle model.SyncBundle
	if err := c.do(ctx, http.MethodGet, "/sync/export", nil, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Push sends a bundle to the peer's import endpoint
func (c *Client) Push(ctx context.Context, bundle *model.SyncBundle) (*ImportResponse, error) {
	body, err := json.Marshal(bundle)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal sync bundle")
	}

	var resp ImportResponse
	if err := c.do(ctx, http.MethodPost, "/sync/import", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	endpoint := c.baseURL.JoinPath(path).String()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create peer request", goerr.V("url", endpoint))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to reach peer", goerr.V("url", endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return goerr.Wrap(err, "failed to read peer response", goerr.V("url", endpoint))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("peer returned error status",
			goerr.V("url", endpoint),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return goerr.Wrap(err, "failed to decode peer response", goerr.V("url", endpoint))
	}
	return nil
}

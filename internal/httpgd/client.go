package httpgd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// StateFetcher defines the calls the connection supervisor needs.
// This interface is implemented by *Client and can be replaced in tests.
type StateFetcher interface {
	FetchState(ctx context.Context) (RemoteState, error)
	OpenPush(ctx context.Context) (PushConn, error)
}

// PlotSource defines the calls the viewer needs to browse and mutate plots.
type PlotSource interface {
	FetchPlots(ctx context.Context) (PlotList, error)
	FetchImage(ctx context.Context, src string) ([]byte, error)
	PlotImageURL(query ImageQuery) string
	RemovePlot(ctx context.Context, ref PlotRef) error
	RemoveByIndex(ctx context.Context, index int) error
	Clear(ctx context.Context) error
}

// Ensure Client implements both interfaces at compile time.
var (
	_ StateFetcher = (*Client)(nil)
	_ PlotSource   = (*Client)(nil)
)

// TokenHeader carries the optional credential on every non-image request.
const TokenHeader = "X-HTTPGD-TOKEN"

// Client talks to the graphics-device HTTP API.
type Client struct {
	baseURL   *url.URL
	pushURL   *url.URL
	http      *http.Client
	dialer    *websocket.Dialer
	token     string
	userAgent string
}

const (
	defaultHost      = "127.0.0.1:8288"
	defaultUserAgent = "gdview/0.1"
	requestTimeout   = 5 * time.Second
	handshakeTimeout = 5 * time.Second
)

// NewClient builds a Client for host, which may be host:port or a full http(s) URL.
func NewClient(host, token string) (*Client, error) {
	base, err := parseBaseURL(host)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		pushURL: pushURLFor(base),
		http: &http.Client{
			Timeout: requestTimeout,
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		token:     strings.TrimSpace(token),
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the request-scheme base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchState retrieves the current device state.
func (c *Client) FetchState(ctx context.Context) (RemoteState, error) {
	if c == nil {
		return RemoteState{}, fmt.Errorf("client is nil")
	}
	var payload RemoteState
	if err := c.do(ctx, http.MethodGet, "/state", nil, &payload); err != nil {
		return RemoteState{}, err
	}
	return payload, nil
}

// FetchPlots retrieves the state together with the full plot history.
func (c *Client) FetchPlots(ctx context.Context) (PlotList, error) {
	if c == nil {
		return PlotList{}, fmt.Errorf("client is nil")
	}
	var payload PlotList
	if err := c.do(ctx, http.MethodGet, "/plots", nil, &payload); err != nil {
		return PlotList{}, err
	}
	return payload, nil
}

// PlotImageURL builds the address of a rendered plot. The credential travels
// as a query parameter because image consumers cannot set headers.
func (c *Client) PlotImageURL(query ImageQuery) string {
	values := url.Values{}
	if id := strings.TrimSpace(query.ID); id != "" {
		values.Set("id", id)
	} else if query.ByIndex && query.Index >= 0 {
		values.Set("index", strconv.Itoa(query.Index))
	}
	if query.Width > 0 {
		values.Set("width", formatSize(query.Width))
	}
	if query.Height > 0 {
		values.Set("height", formatSize(query.Height))
	}
	if c.token != "" {
		values.Set("token", c.token)
	}
	if query.CacheBuster != "" {
		values.Set("c", query.CacheBuster)
	}
	rel := &url.URL{Path: "/svg", RawQuery: values.Encode()}
	return c.baseURL.ResolveReference(rel).String()
}

// FetchImage downloads an image address produced by PlotImageURL.
func (c *Client) FetchImage(ctx context.Context, src string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}
	if u.Host != c.baseURL.Host {
		return nil, fmt.Errorf("image url %q is not served by %s", src, c.baseURL.Host)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, statusError(u.Path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return body, nil
}

// RemovePlot deletes one plot by id.
func (c *Client) RemovePlot(ctx context.Context, ref PlotRef) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	id := strings.TrimSpace(ref.ID)
	if id == "" {
		return fmt.Errorf("plot id required")
	}
	values := url.Values{}
	values.Set("id", id)
	return c.do(ctx, http.MethodGet, "/remove", values, nil)
}

// RemoveByIndex deletes the plot at a position in the history.
func (c *Client) RemoveByIndex(ctx context.Context, index int) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if index < 0 {
		return fmt.Errorf("plot index must not be negative")
	}
	values := url.Values{}
	values.Set("index", strconv.Itoa(index))
	return c.do(ctx, http.MethodGet, "/remove", values, nil)
}

// Clear removes every plot from the history.
func (c *Client) Clear(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodGet, "/clear", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, dest any) error {
	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return statusError(path, resp.StatusCode)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(path string, code int) error {
	if code == http.StatusNotFound {
		return fmt.Errorf("%w: api %s returned status %d", ErrNotFound, path, code)
	}
	return fmt.Errorf("api %s returned status %d", path, code)
}

func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseBaseURL(host string) (*url.URL, error) {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		trimmed = defaultHost
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse host %q: %w", host, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("parse host %q: unsupported scheme %q", host, u.Scheme)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func pushURLFor(base *url.URL) *url.URL {
	u := *base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/"
	return &u
}

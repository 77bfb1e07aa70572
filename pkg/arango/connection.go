// Package arango provides object-oriented access to the ArangoDB HTTP API:
// collections, documents, simple queries, AQL queries and result cursors.
package arango

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultURL is used when ConnectionConfig.URL is empty.
	DefaultURL = "http://localhost:8529"

	apiPrefix      = "/_api"
	defaultTimeout = 30 * time.Second
)

// ConnectionConfig holds the configuration for a Connection.
type ConnectionConfig struct {
	// URL of the server, e.g. http://localhost:8529
	URL      string
	Username string
	Password string
	// HTTPClient overrides the default client (30s timeout).
	HTTPClient *http.Client
	// Logger receives one debug event per request. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Connection sends requests to one server and translates error responses.
type Connection struct {
	scheme     string
	host       string
	port       int
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu       sync.RWMutex
	username string
	password string
}

// serverError is the error body ArangoDB sends with non-2xx responses.
type serverError struct {
	Error        bool   `json:"error"`
	Code         int    `json:"code"`
	ErrorNum     int    `json:"errorNum"`
	ErrorMessage string `json:"errorMessage"`
}

// NewConnection creates a Connection from the given configuration.
func NewConnection(cfg *ConnectionConfig) (*Connection, error) {
	if cfg == nil {
		return nil, NewValidationError("config is required", "")
	}

	raw := cfg.URL
	if raw == "" {
		raw = DefaultURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, NewValidationError("invalid server URL", err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewValidationError("unsupported URL scheme", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, NewValidationError("server URL has no host", raw)
	}

	port := 8529
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return nil, NewValidationError("invalid server port", u.Port())
		}
	}

	username, password := cfg.Username, cfg.Password
	if u.User != nil && username == "" {
		username = u.User.Username()
		password, _ = u.User.Password()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	host := u.Hostname()
	return &Connection{
		scheme:     u.Scheme,
		host:       host,
		port:       port,
		baseURL:    fmt.Sprintf("%s://%s%s", u.Scheme, joinHostPort(host, port), apiPrefix),
		httpClient: httpClient,
		logger:     logger,
		username:   username,
		password:   password,
	}, nil
}

func joinHostPort(host string, port int) string {
	if strings.Contains(host, ":") {
		return fmt.Sprintf("[%s]:%d", host, port)
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Scheme returns the URL scheme (http or https).
func (c *Connection) Scheme() string { return c.scheme }

// Host returns the server host name.
func (c *Connection) Host() string { return c.host }

// Port returns the server port.
func (c *Connection) Port() int { return c.port }

// BaseURL returns the API root all request paths are resolved against.
func (c *Connection) BaseURL() string { return c.baseURL }

// Username returns the user the connection authenticates as, if any.
func (c *Connection) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// Authenticate replaces the credentials used for subsequent requests.
func (c *Connection) Authenticate(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = username
	c.password = password
}

// SendRequest sends one request and decodes a successful JSON reply into out.
// path is relative to the API root; method defaults to GET.
func (c *Connection) SendRequest(ctx context.Context, method, path string, body, out interface{}) error {
	method, err := normalizeMethod(method)
	if err != nil {
		return err
	}

	path = strings.TrimPrefix(path, "/")
	endpoint := c.baseURL + "/" + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Dur("latency", time.Since(start)).
			Msg("arango request failed")
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("arango request completed")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return translateError(resp.StatusCode, path, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Connection) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	username, password := c.username, c.password
	c.mu.RUnlock()

	if username != "" {
		req.SetBasicAuth(username, password)
	}
}

func normalizeMethod(method string) (string, error) {
	switch strings.ToUpper(method) {
	case "", http.MethodGet:
		return http.MethodGet, nil
	case http.MethodPost:
		return http.MethodPost, nil
	case http.MethodPut:
		return http.MethodPut, nil
	case http.MethodDelete:
		return http.MethodDelete, nil
	default:
		return "", NewValidationError("unsupported request method", method)
	}
}

// translateError maps a non-2xx response onto the error taxonomy. The errorNum
// decides first; a bare 404 falls back to the resource in the path.
func translateError(status int, path string, data []byte) error {
	var body serverError
	_ = json.Unmarshal(data, &body)

	message := body.ErrorMessage
	if message == "" {
		message = strings.TrimSpace(string(data))
	}

	switch body.ErrorNum {
	case ErrorNumDocumentNotFound:
		return NewDocumentNotFoundError(resourceID(path))
	case ErrorNumCollectionNotFound:
		return NewCollectionNotFoundError(resourceID(path))
	case ErrorNumQueryParse:
		return NewBadSyntaxError(message)
	}

	if status == http.StatusNotFound {
		switch {
		case strings.HasPrefix(path, "document"):
			return NewDocumentNotFoundError(resourceID(path))
		case strings.HasPrefix(path, "collection"):
			return NewCollectionNotFoundError(resourceID(path))
		}
	}

	return NewResponseError(status, body.ErrorNum, body.ErrorMessage)
}

// resourceID strips the resource name and query string from a request path:
// "document/users/50%25off?x" becomes "users/50%off".
func resourceID(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if id, err := url.PathUnescape(path); err == nil {
		return id
	}
	return path
}

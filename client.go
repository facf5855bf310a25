package clickhouse

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

type Config struct {
	// URL of the HTTP interface. Query parameters on it, such as database
	// or user, are sent with every request.
	URL string
	// Format of responses, TabSeparated when nil.
	Format *Format
	// QueryIDs tags every statement with a generated query_id.
	QueryIDs   bool
	LogLevel   LogLevel
	Logger     Logger
	HTTPClient *http.Client
	// Transport replaces the HTTP transport built from URL and HTTPClient.
	Transport Transport
}

// Client executes statements against one server. It holds no per query
// state and is safe for concurrent use.
type Client struct {
	transport Transport
	format    *Format
	queryIDs  bool
	logger    Logger
}

func New(conf Config) (*Client, error) {
	logger := conf.Logger
	if logger == nil {
		l, err := newZapLogger(conf.LogLevel)
		if err != nil {
			return nil, err
		}
		logger = l
	}

	transport := conf.Transport
	if transport == nil {
		t, err := NewHTTPTransport(conf.URL, conf.HTTPClient, logger)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	format := conf.Format
	if format == nil {
		format = Formats.TabSeparated
	}
	return &Client{
		transport: transport,
		format:    format,
		queryIDs:  conf.QueryIDs,
		logger:    logger,
	}, nil
}

// Build starts a query bound to c.
func (c *Client) Build() Query {
	return Query{client: c}
}

func (c *Client) Quote(v any) (string, error) {
	return Quote(v)
}

// Exec sends sql with opts and returns the raw response body.
func (c *Client) Exec(ctx context.Context, sql string, opts ExecOptions) ([]byte, error) {
	if opts.QueryID == "" && c.queryIDs {
		opts.QueryID = uuid.NewString()
	}
	if !c.format.serverDefault() {
		params := url.Values{}
		for k, vs := range opts.Params {
			params[k] = vs
		}
		params.Set("default_format", c.format.Name)
		opts.Params = params
	}

	c.logger.Debugf("%s: %s", queryLabel(opts.QueryID), sql)
	body, err := c.transport.Exec(ctx, sql, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("%s: %d bytes", queryLabel(opts.QueryID), len(body))
	return body, nil
}

// Query runs a raw statement and wraps its response.
func (c *Client) Query(ctx context.Context, sql string) (*Result, error) {
	body, err := c.Exec(ctx, sql, ExecOptions{})
	if err != nil {
		return nil, err
	}
	return ParseResult(body, c.format), nil
}

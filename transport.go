package clickhouse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
)

// Transport sends one statement and returns the raw response body.
type Transport interface {
	Exec(ctx context.Context, sql string, opts ExecOptions) ([]byte, error)
}

// TemplateData is an external table sent along with a statement. The
// metadata fields are sent only when set.
type TemplateData struct {
	IO        io.Reader
	Format    string
	Structure string
	Types     string
}

// ExecOptions carries what goes with the statement besides its text. Body
// and TemplateData are mutually exclusive.
type ExecOptions struct {
	Body         io.Reader
	TemplateData map[string]TemplateData
	QueryID      string
	// Params are extra query parameters, e.g. server settings.
	Params url.Values
}

// HTTPTransport posts statements to the HTTP interface over one reusable
// client. It is safe for concurrent use.
type HTTPTransport struct {
	conn   *connection
	logger Logger
}

// NewHTTPTransport connects to rawURL. A nil hc gets a dedicated keep-alive
// client.
func NewHTTPTransport(rawURL string, hc *http.Client, logger Logger) (*HTTPTransport, error) {
	conn, err := newConnection(rawURL, hc)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = nopLogger()
	}
	return &HTTPTransport{conn: conn, logger: logger}, nil
}

func (t *HTTPTransport) Exec(ctx context.Context, sql string, opts ExecOptions) ([]byte, error) {
	if opts.Body != nil && opts.TemplateData != nil {
		return nil, malformed("cannot specify both body and template data")
	}

	params := url.Values{}
	for k, vs := range opts.Params {
		params[k] = vs
	}
	params.Set("query", sql)
	if opts.QueryID != "" {
		params.Set("query_id", opts.QueryID)
	}

	body := opts.Body
	var contentType string
	if opts.TemplateData != nil {
		buf, ct, err := encodeTemplateData(opts.TemplateData, params)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.conn.url(params), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.conn.http.Do(req)
	if err != nil {
		t.logger.Errorf("%s failed: %s", queryLabel(opts.QueryID), err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.logger.Errorf("%s returned %d: %s", queryLabel(opts.QueryID), resp.StatusCode, respBody)
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

// encodeTemplateData writes every entry with a payload as a multipart file
// part and records its metadata in params.
func encodeTemplateData(data map[string]TemplateData, params url.Values) (*bytes.Buffer, string, error) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, name := range names {
		td := data[name]
		if td.IO == nil {
			continue
		}
		part, err := w.CreateFormFile(name, name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, td.IO); err != nil {
			return nil, "", fmt.Errorf("template data %s: %w", name, err)
		}
		if td.Format != "" {
			params.Set(name+"_format", td.Format)
		}
		if td.Structure != "" {
			params.Set(name+"_structure", td.Structure)
		}
		if td.Types != "" {
			params.Set(name+"_types", td.Types)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

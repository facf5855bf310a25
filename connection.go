package clickhouse

import (
	"fmt"
	"net/http"
	"net/url"
)

// connection is the long lived handle to one server endpoint. Parameters
// carried by the configured URL are sent with every request.
type connection struct {
	endpoint *url.URL
	params   url.Values
	http     *http.Client
}

func newConnection(rawURL string, hc *http.Client) (*connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url %q should be http or https", rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}
	params := u.Query()
	u.RawQuery = ""

	if hc == nil {
		hc = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &connection{endpoint: u, params: params, http: hc}, nil
}

// url returns the endpoint with the configured parameters merged with extra.
func (c *connection) url(extra url.Values) string {
	params := url.Values{}
	for k, vs := range c.params {
		params[k] = append([]string{}, vs...)
	}
	for k, vs := range extra {
		params[k] = append([]string{}, vs...)
	}
	u := *c.endpoint
	u.RawQuery = params.Encode()
	return u.String()
}

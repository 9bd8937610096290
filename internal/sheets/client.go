// Package sheets is a minimal client for the Google Sheets values API. It is
// constructed once with injected credentials and passed to whatever needs it;
// there is no package-level client state.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURI     string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

// WithBaseURL points the client at a different API host. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the oauth2-authenticated transport entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client whose transport refreshes its access token from
// the long-lived refresh token. The timeout is the only timeout in the
// ingestion path; everything inside the process is bounded by it.
func NewClient(creds Credentials, timeout time.Duration, opts ...Option) *Client {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: creds.TokenURI},
	}
	src := conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: creds.RefreshToken})
	hc := oauth2.NewClient(context.Background(), src)
	hc.Timeout = timeout

	c := &Client{httpClient: hc, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// Values fetches one A1-notation range and returns the raw grid, header row
// included.
func (c *Client) Values(ctx context.Context, spreadsheetID, rangeName string) ([][]string, error) {
	u := fmt.Sprintf("%s/spreadsheets/%s/values/%s", c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(rangeName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet range %q: %w", rangeName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch sheet range %q: status %d: %s", rangeName, resp.StatusCode, string(body))
	}
	var out valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sheet range %q: %w", rangeName, err)
	}
	return out.Values, nil
}

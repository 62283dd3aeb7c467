// Package client talks to the remote Code Guardian scanning service and
// classifies every failure as server-rejected, unreachable, or unknown.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/types"
)

const (
	DefaultBaseURL = "http://localhost:8085/api"
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes bounds how much of a response body is buffered.
	maxResponseBytes = 32 << 20
)

// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	agent   string
}

type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.agent = ua }
}

// New returns a client for the service rooted at baseURL (for example
// "http://localhost:8085/api"). An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log.Logger,
		agent:   "codeguardian",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string { return c.baseURL }

// ScanResult is a successful scan response.
type ScanResult struct {
	Findings []types.Finding
	Summary  types.Summary
	Message  string
}

// HealthInfo is the body of a healthy health-endpoint response.
type HealthInfo struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Rules lists the rule categories the service applies.
type Rules struct {
	Categories map[string][]string `json:"categories"`
	TotalRules int                 `json:"totalRules"`
}

// Validation is the service's quick pre-scan check of a request.
type Validation struct {
	IsValid        bool   `json:"isValid"`
	LineCount      int    `json:"lineCount"`
	CharacterCount int    `json:"characterCount"`
	Language       string `json:"language"`
}

// envelope is the union of every JSON body the service sends.
type envelope struct {
	Success    *bool            `json:"success"`
	Message    string           `json:"message"`
	Error      string           `json:"error"`
	Results    *[]types.Finding `json:"results"`
	Summary    *types.Summary   `json:"summary"`
	Validation *Validation      `json:"validation"`
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

func (c *Client) do(ctx context.Context, method, path string, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, unknown(0, "%v", err)
		}
		body = bytes.NewReader(b)
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return response{}, unknown(0, "%v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.agent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	c.log.Debug().Str("method", method).Str("url", url).Msg("api request")
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", url).Dur("elapsed", time.Since(start)).Msg("api request failed")
		return response{}, unreachable(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, unknown(resp.StatusCode, "reading response: %v", err)
	}
	c.log.Debug().
		Int("status", resp.StatusCode).
		Str("url", url).
		Int("bytes", len(b)).
		Dur("elapsed", time.Since(start)).
		Msg("api response")
	return response{status: resp.StatusCode, body: b}, nil
}

// decodeEnvelope parses the body and maps structured failures. It returns
// a nil error only for 2xx responses that decoded cleanly and did not
// declare success=false.
func decodeEnvelope(r response, fallback string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(r.body, &env); err != nil {
		if !r.ok() {
			return env, unknown(r.status, "HTTP %d", r.status)
		}
		return env, unknown(r.status, "malformed response body: %v", err)
	}
	if env.Success != nil && !*env.Success {
		return env, rejected(r.status, env.Message, fallback)
	}
	if !r.ok() {
		if env.Message != "" || env.Error != "" {
			msg := env.Message
			if msg == "" {
				msg = env.Error
			}
			return env, rejected(r.status, msg, fallback)
		}
		return env, unknown(r.status, "HTTP %d", r.status)
	}
	return env, nil
}

// Scan submits code for scanning. Success requires success=true together
// with a results list and a summary whose counts agree with it.
func (c *Client) Scan(ctx context.Context, req types.ScanRequest) (ScanResult, error) {
	r, err := c.do(ctx, http.MethodPost, "/scan", req)
	if err != nil {
		return ScanResult{}, err
	}
	env, err := decodeEnvelope(r, "Scan failed")
	if err != nil {
		return ScanResult{}, err
	}
	if env.Success == nil {
		return ScanResult{}, unknown(r.status, "response is missing the success flag")
	}
	if env.Results == nil || env.Summary == nil {
		return ScanResult{}, unknown(r.status, "success response is missing results or summary")
	}
	findings := *env.Results
	for i, f := range findings {
		if !f.Severity.Valid() {
			return ScanResult{}, unknown(r.status, "finding %d has unknown severity %q", i, f.Severity)
		}
	}
	if !filter.Consistent(findings, *env.Summary) {
		return ScanResult{}, unknown(r.status, "summary counts do not match %d findings", len(findings))
	}
	if findings == nil {
		findings = []types.Finding{}
	}
	return ScanResult{Findings: findings, Summary: *env.Summary, Message: env.Message}, nil
}

// Health calls the liveness endpoint. Any non-2xx status is an error.
func (c *Client) Health(ctx context.Context) (HealthInfo, error) {
	r, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthInfo{}, err
	}
	if !r.ok() {
		return HealthInfo{}, rejected(r.status, fmt.Sprintf("Health check failed (HTTP %d)", r.status), "")
	}
	// Any 2xx counts as healthy; the body is informational.
	var info HealthInfo
	if len(bytes.TrimSpace(r.body)) > 0 {
		if err := json.Unmarshal(r.body, &info); err != nil {
			c.log.Debug().Err(err).Msg("ignoring malformed health body")
			info = HealthInfo{}
		}
	}
	return info, nil
}

// Rules fetches the service's rule catalogue.
func (c *Client) Rules(ctx context.Context) (Rules, error) {
	r, err := c.do(ctx, http.MethodGet, "/rules", nil)
	if err != nil {
		return Rules{}, err
	}
	if _, err := decodeEnvelope(r, "Failed to fetch rules"); err != nil {
		return Rules{}, err
	}
	var rules Rules
	if err := json.Unmarshal(r.body, &rules); err != nil {
		return Rules{}, unknown(r.status, "malformed rules body: %v", err)
	}
	if rules.Categories == nil {
		return Rules{}, unknown(r.status, "rules response has no categories")
	}
	return rules, nil
}

// Validate asks the service for a quick syntax-level check.
func (c *Client) Validate(ctx context.Context, req types.ScanRequest) (Validation, error) {
	r, err := c.do(ctx, http.MethodPost, "/validate", req)
	if err != nil {
		return Validation{}, err
	}
	env, err := decodeEnvelope(r, "Validation failed")
	if err != nil {
		return Validation{}, err
	}
	if env.Validation == nil {
		return Validation{}, unknown(r.status, "validation response has no validation block")
	}
	return *env.Validation, nil
}

// Package verify checks that a deployed frontend and backend pair is up.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds each individual request.
const DefaultTimeout = 10 * time.Second

// Check is the outcome of one verification step.
type Check struct {
	Name    string
	URL     string
	Passed  bool
	Status  int
	Details []string
	Err     error
	Elapsed time.Duration
}

// Report collects every check in the order it ran.
type Report struct {
	Frontend string
	Backend  string
	Checks   []Check
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return len(r.Checks) > 0
}

type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	t := o.Timeout
	if t <= 0 {
		t = DefaultTimeout
	}
	return &http.Client{Timeout: t}
}

// Run checks the backend health endpoint and the frontend page, then
// reports the backend's CORS policy toward the frontend origin.
func Run(ctx context.Context, frontend, backend string, opts Options) Report {
	frontend = strings.TrimRight(frontend, "/")
	backend = strings.TrimRight(backend, "/")
	hc := opts.client()
	r := Report{Frontend: frontend, Backend: backend}
	r.Checks = append(r.Checks,
		Backend(ctx, hc, backend),
		Frontend(ctx, hc, frontend),
		Integration(ctx, hc, frontend, backend),
	)
	return r
}

func get(ctx context.Context, hc *http.Client, method, url string, hdr http.Header) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, nil, err
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	return resp, body, err
}

// Backend expects GET {backend}/api/health to answer 200 with the health JSON.
func Backend(ctx context.Context, hc *http.Client, backend string) Check {
	c := Check{Name: "Backend", URL: backend + "/api/health"}
	start := time.Now()
	resp, body, err := get(ctx, hc, http.MethodGet, c.URL, nil)
	c.Elapsed = time.Since(start)
	if err != nil {
		c.Err = err
		return c
	}
	c.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		c.Err = fmt.Errorf("health check failed (HTTP %d)", resp.StatusCode)
		return c
	}
	var h struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &h); err != nil {
		c.Err = fmt.Errorf("health body is not JSON: %w", err)
		return c
	}
	c.Passed = true
	c.Details = []string{"Status: " + h.Status, "Service: " + h.Service, "Version: " + h.Version}
	log.Debug().Str("url", c.URL).Str("status", h.Status).Msg("backend verified")
	return c
}

// Frontend expects GET {frontend} to answer 200. Page markers are reported
// but do not affect the result.
func Frontend(ctx context.Context, hc *http.Client, frontend string) Check {
	c := Check{Name: "Frontend", URL: frontend}
	start := time.Now()
	resp, body, err := get(ctx, hc, http.MethodGet, frontend, nil)
	c.Elapsed = time.Since(start)
	if err != nil {
		c.Err = err
		return c
	}
	c.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		c.Err = fmt.Errorf("frontend not accessible (HTTP %d)", resp.StatusCode)
		return c
	}
	page := string(body)
	c.Passed = true
	c.Details = []string{
		fmt.Sprintf("HTTP Status: %d", resp.StatusCode),
		"React App: " + mark(strings.Contains(page, "react") || strings.Contains(page, "React")),
		"Code Guardian: " + mark(strings.Contains(page, "Code Guardian") || strings.Contains(page, "code-guardian")),
	}
	return c
}

// Integration sends a CORS preflight for the scan endpoint from the
// frontend origin. The outcome is reported in Details and never fails the
// check, since proxies commonly answer OPTIONS themselves.
func Integration(ctx context.Context, hc *http.Client, frontend, backend string) Check {
	c := Check{Name: "Integration", URL: backend + "/api/scan", Passed: true}
	hdr := http.Header{}
	hdr.Set("Origin", frontend)
	hdr.Set("Access-Control-Request-Method", http.MethodPost)
	hdr.Set("Access-Control-Request-Headers", "Content-Type")

	start := time.Now()
	resp, _, err := get(ctx, hc, http.MethodOptions, c.URL, hdr)
	c.Elapsed = time.Since(start)
	if err != nil {
		c.Details = []string{"CORS preflight: no response (" + err.Error() + ")"}
		log.Debug().Err(err).Str("url", c.URL).Msg("cors preflight failed")
		return c
	}
	c.Status = resp.StatusCode
	allow := resp.Header.Get("Access-Control-Allow-Origin")
	if resp.StatusCode < 400 && (allow == "*" || allow == frontend) {
		c.Details = []string{fmt.Sprintf("CORS allows %s to access %s", frontend, backend)}
		return c
	}
	c.Details = []string{fmt.Sprintf("CORS preflight: not confirmed (HTTP %d, Access-Control-Allow-Origin %q)", resp.StatusCode, allow)}
	return c
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "not detected"
}

// Print writes a human-readable report in the order checks ran.
func Print(w io.Writer, r Report) {
	fmt.Fprintln(w, "Code Guardian Deployment Verification")
	fmt.Fprintf(w, "Frontend URL: %s\n", r.Frontend)
	fmt.Fprintf(w, "Backend URL:  %s\n\n", r.Backend)
	for _, c := range r.Checks {
		if c.Passed {
			fmt.Fprintf(w, "✅ %s passed (%s)\n", c.Name, c.Elapsed.Round(time.Millisecond))
		} else {
			fmt.Fprintf(w, "❌ %s failed: %v\n", c.Name, c.Err)
		}
		for _, d := range c.Details {
			fmt.Fprintf(w, "   %s\n", d)
		}
	}
	fmt.Fprintln(w)
	for _, c := range r.Checks {
		res := "FAIL"
		if c.Passed {
			res = "PASS"
		}
		fmt.Fprintf(w, "%-12s %s\n", c.Name+":", res)
	}
	if r.OK() {
		fmt.Fprintln(w, "\nAll checks passed.")
	} else {
		fmt.Fprintln(w, "\nSome checks failed.")
	}
}

package core

import (
	"context"
	"time"

	"github.com/codeguardian/codeguardian/internal/client"
	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/orchestrator"
	"github.com/codeguardian/codeguardian/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Artifact    = types.Artifact
	Finding     = types.Finding
	Severity    = types.Severity
	Summary     = types.Summary
	Outcome     = orchestrator.Outcome
	FilterState = filter.State
	Client      = client.Client
)

const (
	SevCritical = types.SevCritical
	SevHigh     = types.SevHigh
	SevMedium   = types.SevMedium
	SevLow      = types.SevLow
)

// Errors callers may match with errors.Is.
var (
	ErrValidation     = orchestrator.ErrValidation
	ErrServerRejected = client.ErrServerRejected
	ErrUnreachable    = client.ErrUnreachable
	ErrUnknown        = client.ErrUnknown
)

// NewClient returns an API client for baseURL ("" selects the default
// local service) with the given request timeout (0 keeps the default).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return client.New(baseURL, client.WithTimeout(timeout))
}

// Scan submits a single artifact and waits for the outcome.
func Scan(ctx context.Context, c *Client, a Artifact) (Outcome, error) {
	return orchestrator.New().Scan(ctx, c, a)
}

// Filter returns the findings matching state, in their original order.
func Filter(findings []Finding, state FilterState) []Finding {
	return filter.Apply(findings, state)
}

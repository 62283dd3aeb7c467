// Package health tracks whether the scanning service is reachable.
//
// A probe is one request and never retries. Every failure, whatever its
// cause, is reported as Disconnected; callers never see an error.
package health

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codeguardian/codeguardian/internal/client"
	"github.com/codeguardian/codeguardian/internal/types"
)

// Checker is the part of the API client a probe needs.
type Checker interface {
	Health(ctx context.Context) (client.HealthInfo, error)
}

// Result is what a single probe observed.
type Result struct {
	Status types.HealthStatus
	Info   client.HealthInfo
	Err    error // cause of a Disconnected result, for logs only
	At     time.Time
}

// Probe issues one health request. It touches no Monitor state.
func Probe(ctx context.Context, c Checker) Result {
	info, err := c.Health(ctx)
	r := Result{Info: info, Err: err, At: time.Now()}
	if err != nil {
		r.Status = types.HealthDisconnected
	} else {
		r.Status = types.HealthConnected
	}
	return r
}

// Monitor holds the last observed health status.
type Monitor struct {
	checker Checker
	log     zerolog.Logger
	last    Result
}

func New(c Checker) *Monitor {
	return &Monitor{checker: c, log: log.Logger}
}

// Status is Unknown until the first result is applied.
func (m *Monitor) Status() types.HealthStatus { return m.last.Status }

// Last returns the most recently applied result.
func (m *Monitor) Last() Result { return m.last }

// Probe runs a probe against the monitor's checker without applying it.
func (m *Monitor) Probe(ctx context.Context) Result { return Probe(ctx, m.checker) }

// Apply records r and returns the new status.
func (m *Monitor) Apply(r Result) types.HealthStatus {
	if r.Status != m.last.Status {
		ev := m.log.Debug().Stringer("status", r.Status)
		if r.Err != nil {
			ev = ev.Err(r.Err)
		}
		ev.Msg("backend health changed")
	}
	m.last = r
	return r.Status
}

// Check probes and applies in one call.
func (m *Monitor) Check(ctx context.Context) types.HealthStatus {
	return m.Apply(m.Probe(ctx))
}

// Package orchestrator drives one scan at a time through
// Idle → Scanning → ResultsReady|Failed and guards against responses that
// arrive after they stopped mattering.
//
// An Orchestrator is owned by a single goroutine (the TUI update loop or
// the CLI command). The network round trip is split out as a Task whose
// Response is handed back to Apply on that goroutine; a response whose
// sequence number is no longer current is dropped without touching state.
package orchestrator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codeguardian/codeguardian/internal/client"
	"github.com/codeguardian/codeguardian/internal/types"
)

var (
	ErrValidation   = errors.New("Please enter some code to scan") //nolint:staticcheck // user-facing text
	ErrScanInFlight = errors.New("a scan is already in progress")
)

type State int

const (
	Idle State = iota
	Scanning
	ResultsReady
	Failed
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case ResultsReady:
		return "results"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Scanner performs the scan round trip; *client.Client satisfies it.
type Scanner interface {
	Scan(ctx context.Context, req types.ScanRequest) (client.ScanResult, error)
}

// Task is one submitted scan, tagged with its sequence number.
type Task struct {
	Seq     uint64
	Request types.ScanRequest
}

// Response is the tagged result of running a Task.
type Response struct {
	Seq    uint64
	Result client.ScanResult
	Err    error
}

// Run performs the request. It never touches orchestrator state and may
// run on any goroutine.
func (t Task) Run(ctx context.Context, s Scanner) Response {
	res, err := s.Scan(ctx, t.Request)
	return Response{Seq: t.Seq, Result: res, Err: err}
}

// Failure is the single classified message a failed scan leaves behind.
type Failure struct {
	Kind    client.Kind
	Message string
	Err     error
}

// Outcome is the result of the most recent applied scan. At most one of
// Findings/Summary or Failure is meaningful, according to the state.
type Outcome struct {
	Findings []types.Finding
	Summary  types.Summary
	Message  string
	Failure  *Failure
}

// Transition describes one state change.
type Transition struct {
	From, To State
	Seq      uint64
}

type Orchestrator struct {
	state   State
	seq     uint64
	outcome Outcome
	hooks   []func(Transition)
	log     zerolog.Logger
}

func New() *Orchestrator {
	return &Orchestrator{log: log.Logger}
}

func (o *Orchestrator) State() State { return o.state }

// Seq is the sequence number of the most recent submission.
func (o *Orchestrator) Seq() uint64 { return o.seq }

// Outcome returns the current outcome; the zero value outside
// ResultsReady and Failed.
func (o *Orchestrator) Outcome() Outcome { return o.outcome }

// Findings returns the current findings. Callers must not modify the slice.
func (o *Orchestrator) Findings() []types.Finding { return o.outcome.Findings }

// OnTransition registers fn to be called after every state change.
func (o *Orchestrator) OnTransition(fn func(Transition)) {
	o.hooks = append(o.hooks, fn)
}

func (o *Orchestrator) set(to State) {
	tr := Transition{From: o.state, To: to, Seq: o.seq}
	o.state = to
	o.log.Debug().Stringer("from", tr.From).Stringer("to", tr.To).Uint64("seq", tr.Seq).Msg("scan state")
	for _, fn := range o.hooks {
		fn(tr)
	}
}

// Submit validates a and starts a new scan. Empty or whitespace-only code
// fails with ErrValidation and no request is made.
func (o *Orchestrator) Submit(a types.Artifact) (Task, error) {
	if a.Empty() {
		return Task{}, ErrValidation
	}
	if o.state == Scanning {
		return Task{}, ErrScanInFlight
	}
	o.seq++
	o.outcome = Outcome{}
	o.set(Scanning)
	return Task{Seq: o.seq, Request: types.NewScanRequest(a)}, nil
}

// Apply installs r if it belongs to the current scan. It reports whether r
// was applied; stale responses leave every piece of state untouched.
func (o *Orchestrator) Apply(r Response) bool {
	if r.Seq != o.seq || o.state != Scanning {
		o.log.Debug().Uint64("seq", r.Seq).Uint64("current", o.seq).Msg("dropping stale scan response")
		return false
	}
	if r.Err != nil {
		o.outcome = Outcome{Failure: &Failure{Kind: client.KindOf(r.Err), Message: r.Err.Error(), Err: r.Err}}
		o.set(Failed)
		return true
	}
	findings := r.Result.Findings
	if findings == nil {
		findings = []types.Finding{}
	}
	o.outcome = Outcome{Findings: findings, Summary: r.Result.Summary, Message: r.Result.Message}
	o.set(ResultsReady)
	return true
}

// Reset discards the outcome and returns to Idle. An in-flight request is
// not cancelled; its response will be dropped by Apply.
func (o *Orchestrator) Reset() {
	o.outcome = Outcome{}
	if o.state != Idle {
		o.set(Idle)
	}
}

// Scan submits a, runs the request on the calling goroutine and applies it.
// A failed scan is returned both in the outcome and as the error.
func (o *Orchestrator) Scan(ctx context.Context, s Scanner, a types.Artifact) (Outcome, error) {
	task, err := o.Submit(a)
	if err != nil {
		return Outcome{}, err
	}
	o.Apply(task.Run(ctx, s))
	out := o.outcome
	if out.Failure != nil {
		return out, out.Failure.Err
	}
	return out, nil
}

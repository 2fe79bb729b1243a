// Package syncer runs the ordered, non-transactional step sequences that keep
// the data store and the blob store in agreement.
//
// A Plan runs its steps strictly in order. The first failing required step
// stops the plan; steps that already ran stay applied and nothing is rolled
// back or retried. Best-effort steps log and record their failure as a warning
// and the plan continues.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/manav03panchal/tasklog/internal/logging"
)

// StepFunc performs one step against a store.
type StepFunc func(ctx context.Context) error

type step struct {
	name       string
	fn         StepFunc
	bestEffort bool
}

// Plan is an ordered list of steps for one user action.
type Plan struct {
	name  string
	steps []step
}

// New starts an empty plan.
func New(name string) *Plan {
	return &Plan{name: name}
}

// Step appends a required step.
func (p *Plan) Step(name string, fn StepFunc) *Plan {
	p.steps = append(p.steps, step{name: name, fn: fn})
	return p
}

// BestEffort appends a step whose failure is reported but does not stop the plan.
func (p *Plan) BestEffort(name string, fn StepFunc) *Plan {
	p.steps = append(p.steps, step{name: name, fn: fn, bestEffort: true})
	return p
}

// Name returns the plan name.
func (p *Plan) Name() string { return p.name }

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.steps) }

// Warning is a best-effort step that failed. Error carries Err's message
// into JSON output.
type Warning struct {
	Step  string `json:"step"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

func newWarning(step string, err error) Warning {
	return Warning{Step: step, Error: err.Error(), Err: err}
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Step, w.Err)
}

// Report describes what a plan run did.
type Report struct {
	Plan      string    `json:"plan"`
	Completed []string  `json:"completed"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

// OK reports whether every step, best-effort ones included, succeeded.
func (r *Report) OK() bool {
	return r != nil && len(r.Warnings) == 0
}

// StepError is returned when a required step fails. Steps listed in Completed
// remain applied.
type StepError struct {
	Plan      string
	Step      string
	Completed []string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s failed: %v", e.Plan, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Partial reports whether earlier steps were applied before the failure.
func (e *StepError) Partial() bool { return len(e.Completed) > 0 }

// Run executes the steps in order. The report is returned even on failure.
func (p *Plan) Run(ctx context.Context) (*Report, error) {
	ctx = logging.WithPlan(ctx, p.name)
	log := logging.FromContext(ctx)
	report := &Report{Plan: p.name, Completed: make([]string, 0, len(p.steps))}

	for _, s := range p.steps {
		start := time.Now()
		err := s.fn(ctx)
		elapsed := time.Since(start).Milliseconds()
		stepLog := log.Step(s.name)

		if err == nil {
			stepLog.Debug("step done", logging.KeyDuration, elapsed)
			report.Completed = append(report.Completed, s.name)
			continue
		}

		if s.bestEffort {
			stepLog.Warn("best-effort step failed", logging.KeyError, err)
			report.Warnings = append(report.Warnings, newWarning(s.name, err))
			continue
		}

		stepLog.Error("step failed", logging.KeyError, err, "completed", report.Completed)
		return report, &StepError{
			Plan:      p.name,
			Step:      s.name,
			Completed: append([]string(nil), report.Completed...),
			Err:       err,
		}
	}

	return report, nil
}

// Package reconcile computes the log rows a task must gain or lose so that its
// persisted daily logs cover exactly its date range.
//
// Dates present both in the desired range and in the persisted logs are never
// part of a plan, so their notes and percent survive any range edit.
package reconcile

import (
	"github.com/manav03panchal/tasklog/internal/calendar"
)

// Plan is the minimal set of changes that turns the existing log dates into
// the desired ones.
type Plan struct {
	ToCreate []calendar.Date `json:"to_create"`
	ToDelete []calendar.Date `json:"to_delete"`
}

// Empty reports whether the plan has nothing to apply.
func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToDelete) == 0
}

// Compute returns desired − existing as creates and existing − desired as
// deletes. Inputs are treated as sets; duplicates are ignored.
func Compute(desired, existing []calendar.Date) Plan {
	want := calendar.NewSet(desired...)
	have := calendar.NewSet(existing...)
	return Plan{
		ToCreate: want.Minus(have),
		ToDelete: have.Minus(want),
	}
}

// ForRange expands [start, end] and computes the plan against existing.
func ForRange(start, end calendar.Date, existing []calendar.Date) (Plan, error) {
	desired, err := calendar.Expand(start, end)
	if err != nil {
		return Plan{}, err
	}
	return Compute(desired, existing), nil
}

// Apply returns the dates that exist after the plan is applied to existing.
func (p Plan) Apply(existing []calendar.Date) []calendar.Date {
	result := calendar.NewSet(existing...)
	for _, d := range p.ToDelete {
		delete(result, d)
	}
	for _, d := range p.ToCreate {
		result[d] = struct{}{}
	}
	return result.Sorted()
}

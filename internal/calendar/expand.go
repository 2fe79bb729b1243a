package calendar

import "sort"

// Expand returns every calendar date from start to end inclusive, ascending.
func Expand(start, end Date) ([]Date, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	n := start.DaysUntil(end) + 1
	dates := make([]Date, 0, n)
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// Days returns end - start + 1, or 0 for an inverted range.
func Days(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	return start.DaysUntil(end) + 1
}

// Sort sorts dates ascending in place.
func Sort(dates []Date) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}

// Set is an unordered collection of distinct dates.
type Set map[Date]struct{}

// NewSet builds a set from dates, dropping duplicates.
func NewSet(dates ...Date) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Has reports whether d is in the set.
func (s Set) Has(d Date) bool {
	_, ok := s[d]
	return ok
}

// Minus returns the members of s not in other, sorted ascending.
func (s Set) Minus(other Set) []Date {
	var out []Date
	for d := range s {
		if !other.Has(d) {
			out = append(out, d)
		}
	}
	Sort(out)
	return out
}

// Sorted returns the members ascending.
func (s Set) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	Sort(out)
	return out
}

package scheduling

import (
	"slices"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
)

// Span is a half-open [Start, End) range of the day.
type Span struct {
	Start Clock
	End   Clock
	Kind  repo.BlockKind
	Notes string
}

func (s Span) Minutes() int { return int(s.End - s.Start) }

// Generate splits [start, end) into contiguous slots of exactly minutes. A
// trailing remainder shorter than one slot is dropped. Degenerate input
// yields an empty slice.
func Generate(start, end Clock, minutes int) []Span {
	if minutes <= 0 || start >= end {
		return []Span{}
	}
	step := Clock(minutes)
	out := make([]Span, 0, int(end-start)/minutes)
	for cur := start; cur+step <= end; cur += step {
		out = append(out, Span{Start: cur, End: cur + step, Kind: repo.BlockConsultation})
	}
	return out
}

// Explicit returns caller-supplied spans sorted by start after checking each
// is well formed, inside [start, end) and disjoint from the others.
func Explicit(spans []Span, start, end Clock) ([]Span, error) {
	out := slices.Clone(spans)
	slices.SortFunc(out, func(a, b Span) int { return int(a.Start - b.Start) })

	for i, s := range out {
		if s.Start >= s.End {
			return nil, ErrInvalidBlock
		}
		if s.Kind == "" {
			out[i].Kind = repo.BlockConsultation
		} else if !s.Kind.Valid() {
			return nil, ErrInvalidBlockKind
		}
		if s.Start < start || s.End > end {
			return nil, ErrBlockOutsideSchedule
		}
		if i > 0 && s.Start < out[i-1].End {
			return nil, ErrBlocksOverlap
		}
	}
	return out, nil
}

// Package layout places normalized timeline nodes in pixel space.
package layout

import (
	"math"
	"time"
)

// TimeScale is a linear mapping from dates to horizontal pixel offsets.
type TimeScale struct {
	DomainStart time.Time `json:"domainStart"`
	DomainEnd   time.Time `json:"domainEnd"`
	RangeStart  float64   `json:"rangeStart"`
	RangeEnd    float64   `json:"rangeEnd"`
	Fallback    bool      `json:"fallback"` // domain was substituted for a degenerate span
}

// NewTimeScale builds a scale over [minDate - pad, maxDate + pad] onto [0, width].
// When minDate equals maxDate (including two zero dates) the domain is replaced by
// opts.FallbackSpan centered on minDate, or on opts.Now when the dates are zero.
func NewTimeScale(minDate, maxDate time.Time, width float64, opts Options) TimeScale {
	opts = opts.withDefaults()
	if width < 0 || math.IsNaN(width) {
		width = 0
	}

	s := TimeScale{RangeStart: 0, RangeEnd: width}

	if minDate.IsZero() && maxDate.IsZero() {
		center := opts.now()
		s.DomainStart, s.DomainEnd = center.Add(-opts.FallbackSpan/2), center.Add(opts.FallbackSpan/2)
		s.Fallback = true
		return s
	}
	if maxDate.Before(minDate) {
		minDate, maxDate = maxDate, minDate
	}

	span := secondsBetween(minDate, maxDate)
	if span <= 0 {
		half := opts.FallbackSpan.Seconds() / 2
		s.DomainStart, s.DomainEnd = addSeconds(minDate, -half), addSeconds(minDate, half)
		s.Fallback = true
		return s
	}

	pad := span * opts.PadFraction
	s.DomainStart, s.DomainEnd = addSeconds(minDate, -pad), addSeconds(maxDate, pad)
	return s
}

// Scale maps a date to a pixel offset. Dates outside the domain extrapolate linearly.
func (s TimeScale) Scale(t time.Time) float64 {
	span := secondsBetween(s.DomainStart, s.DomainEnd)
	if span <= 0 {
		return s.RangeStart
	}
	frac := secondsBetween(s.DomainStart, t) / span
	return s.RangeStart + frac*(s.RangeEnd-s.RangeStart)
}

// Invert maps a pixel offset back to a date.
func (s TimeScale) Invert(px float64) time.Time {
	width := s.RangeEnd - s.RangeStart
	if width == 0 {
		return s.DomainStart
	}
	frac := (px - s.RangeStart) / width
	return addSeconds(s.DomainStart, frac*secondsBetween(s.DomainStart, s.DomainEnd))
}

// secondsBetween returns b - a in seconds. Unlike time.Duration it does not
// saturate for dates more than ~292 years apart.
func secondsBetween(a, b time.Time) float64 {
	return float64(b.Unix()-a.Unix()) + float64(b.Nanosecond()-a.Nanosecond())/1e9
}

// addSeconds shifts t by secs, rounded to the nearest nanosecond.
func addSeconds(t time.Time, secs float64) time.Time {
	whole := math.Floor(secs)
	nanos := int64(math.Round((secs - whole) * 1e9))
	return time.Unix(t.Unix()+int64(whole), int64(t.Nanosecond())+nanos).In(t.Location())
}

// monthSteps are the tick intervals tried before falling back to whole-year multiples.
var monthSteps = []int{1, 2, 3, 6, 12}

// Ticks returns first-of-month dates inside the domain, at most maxTicks of them,
// spaced by the smallest "nice" month interval that fits.
func (s TimeScale) Ticks(maxTicks int) []time.Time {
	if maxTicks <= 0 || !s.DomainEnd.After(s.DomainStart) {
		return nil
	}

	first := firstOfNextMonth(s.DomainStart)
	months := monthsBetween(first, s.DomainEnd) + 1
	if months <= 0 {
		return nil
	}

	step := 0
	for _, m := range monthSteps {
		if ceilDiv(months, m) <= maxTicks {
			step = m
			break
		}
	}
	if step == 0 {
		years := ceilDiv(ceilDiv(months, 12), maxTicks)
		step = 12 * years
	}

	// Align multi-month steps to calendar boundaries (quarters, halves, years).
	for step > 1 && step <= 12 && (int(first.Month())-1)%step != 0 {
		first = first.AddDate(0, 1, 0)
	}

	var ticks []time.Time
	for t := first; !t.After(s.DomainEnd); t = t.AddDate(0, step, 0) {
		ticks = append(ticks, t)
		if len(ticks) == maxTicks {
			break
		}
	}
	return ticks
}

func firstOfNextMonth(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	if first.Before(t) {
		first = first.AddDate(0, 1, 0)
	}
	return first
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

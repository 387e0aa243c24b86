package compare

import (
	"time"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

// Basis tells the allocator how a meter's reading values accumulate.
type Basis struct {
	Represent domain.UnitRepresent
	// SecInRate is the number of seconds a flow value is expressed over.
	// Non-positive values fall back to domain.DefaultSecInRate.
	SecInRate float64
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.Start.Before(w.End) {
		return invalidWindowf("window start %s must be before end %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Shift moves both bounds back by d.
func (w Window) Shift(d time.Duration) Window {
	return Window{Start: w.Start.Add(-d), End: w.End.Add(-d)}
}

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Allocate returns the part of r that falls inside w.
//
// Quantity readings are assumed uniformly spread over their interval and
// contribute value*overlap/duration. Flow readings are a constant rate and
// contribute value*overlapSeconds/secInRate.
func (b Basis) Allocate(r domain.Reading, w Window) float64 {
	if !r.End.After(w.Start) || !r.Start.Before(w.End) {
		return 0
	}
	from := r.Start
	if w.Start.After(from) {
		from = w.Start
	}
	to := r.End
	if w.End.Before(to) {
		to = w.End
	}
	overlap := to.Sub(from).Seconds()

	if b.Represent == domain.RepresentFlow {
		rate := b.SecInRate
		if rate <= 0 {
			rate = domain.DefaultSecInRate
		}
		return r.Value * overlap / rate
	}

	if !r.Start.Before(w.Start) && !r.End.After(w.End) {
		return r.Value
	}
	return r.Value * (overlap / r.Duration().Seconds())
}

// Package compare aggregates meter readings over time windows and compares
// a window against the same window shifted back by a fixed duration.
package compare

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ANIKETSHETTY47/meter-compare/internal/conversion"
)

type Request struct {
	Target
	CurrentStart time.Time
	CurrentEnd   time.Time
	Shift        time.Duration
	UnitID       int64
}

// EndResolution is the granularity compare windows end on. A CurrentEnd
// inside an hour is truncated to the start of that hour, so a request ending
// at 17:12:34 answers the same as one ending at 17:00:00.
const EndResolution = time.Hour

// Windows returns the current window, with its end aligned down to
// EndResolution, and that window shifted back by Shift. An end that would
// align onto or before the start is kept as given.
func (r Request) Windows() (current, shifted Window) {
	end := r.CurrentEnd
	if aligned := end.Truncate(EndResolution); aligned.After(r.CurrentStart) {
		end = aligned
	}
	current = Window{Start: r.CurrentStart, End: end}
	return current, current.Shift(r.Shift)
}

func (r Request) Validate() error {
	if r.Shift <= 0 {
		return invalidWindowf("shift %s must be positive", r.Shift)
	}
	current, shifted := r.Windows()
	if err := current.Validate(); err != nil {
		return err
	}
	return shifted.Validate()
}

type Result struct {
	Target        Target  `json:"target"`
	Current       float64 `json:"current"`
	Shifted       float64 `json:"shifted"`
	UnitID        int64   `json:"unitId"`
	CurrentWindow Window  `json:"currentWindow"`
	ShiftedWindow Window  `json:"shiftedWindow"`
	CurrentTotal  Total   `json:"currentTotal"`
	ShiftedTotal  Total   `json:"shiftedTotal"`
}

// Pair is the [current, shifted] value pair served to clients.
func (r Result) Pair() [2]float64 { return [2]float64{r.Current, r.Shifted} }

type Engine struct {
	store    Store
	parallel bool
}

type Option func(*Engine)

// WithParallelWindows aggregates the current and shifted windows concurrently.
func WithParallelWindows(on bool) Option {
	return func(e *Engine) { e.parallel = on }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, parallel: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph fetches a conversion snapshot for one call.
func (e *Engine) Graph(ctx context.Context) (*conversion.Graph, error) {
	convs, err := e.store.Conversions(ctx)
	if err != nil {
		return nil, storageErr(err, "conversions")
	}
	return conversion.NewGraph(convs), nil
}

// Aggregate sums target over w in the target's native or basis unit.
func (e *Engine) Aggregate(ctx context.Context, target Target, w Window) (Total, error) {
	if err := w.Validate(); err != nil {
		return Total{}, err
	}
	graph, err := e.Graph(ctx)
	if err != nil {
		return Total{}, err
	}
	return newAggregator(e.store, graph).aggregate(ctx, target, w)
}

// Convert resolves a unit to unit transform against a fresh snapshot.
func (e *Engine) Convert(ctx context.Context, src, dst int64) (conversion.Transform, error) {
	for _, id := range []int64{src, dst} {
		if _, err := e.store.Unit(ctx, id); err != nil {
			return conversion.Transform{}, storageErr(err, "unit %d", id)
		}
	}
	graph, err := e.Graph(ctx)
	if err != nil {
		return conversion.Transform{}, err
	}
	return graph.Resolve(src, dst)
}

// Compare aggregates the current window and the shifted window and converts
// both into req.UnitID. A window running past the stored readings simply
// sums whatever overlaps it.
func (e *Engine) Compare(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if _, err := e.store.Unit(ctx, req.UnitID); err != nil {
		return Result{}, storageErr(err, "graphic unit %d", req.UnitID)
	}
	graph, err := e.Graph(ctx)
	if err != nil {
		return Result{}, err
	}

	current, shifted := req.Windows()
	var curTotal, shiftTotal Total
	if e.parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			curTotal, err = newAggregator(e.store, graph).aggregate(gctx, req.Target, current)
			return err
		})
		g.Go(func() (err error) {
			shiftTotal, err = newAggregator(e.store, graph).aggregate(gctx, req.Target, shifted)
			return err
		})
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	} else {
		if curTotal, err = newAggregator(e.store, graph).aggregate(ctx, req.Target, current); err != nil {
			return Result{}, err
		}
		if shiftTotal, err = newAggregator(e.store, graph).aggregate(ctx, req.Target, shifted); err != nil {
			return Result{}, err
		}
	}

	curValue, err := toUnit(graph, curTotal, req.UnitID)
	if err != nil {
		return Result{}, err
	}
	shiftValue, err := toUnit(graph, shiftTotal, req.UnitID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Target:        req.Target,
		Current:       curValue,
		Shifted:       shiftValue,
		UnitID:        req.UnitID,
		CurrentWindow: current,
		ShiftedWindow: shifted,
		CurrentTotal:  curTotal,
		ShiftedTotal:  shiftTotal,
	}, nil
}

func toUnit(graph *conversion.Graph, t Total, unitID int64) (float64, error) {
	if t.UnitID == 0 {
		// group without members or configured unit
		return 0, nil
	}
	tr, err := graph.Resolve(t.UnitID, unitID)
	if err != nil {
		return 0, fmt.Errorf("graphic unit: %w", err)
	}
	return tr.Apply(t.Value), nil
}

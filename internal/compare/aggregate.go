package compare

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/meter-compare/internal/conversion"
	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

// Target identifies the meter or group being aggregated.
type Target struct {
	ID   int64             `json:"id"`
	Kind domain.EntityKind `json:"kind"`
}

func (t Target) String() string { return fmt.Sprintf("%s %d", t.Kind, t.ID) }

// Total is the raw sum for one window in UnitID. Readings, Earliest and
// Latest describe the readings that contributed and let callers notice a
// window that runs past the available data.
type Total struct {
	Value    float64   `json:"value"`
	UnitID   int64     `json:"unitId"`
	Readings int       `json:"readings"`
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

func (t *Total) observe(other Total) {
	t.Readings += other.Readings
	if !other.Earliest.IsZero() && (t.Earliest.IsZero() || other.Earliest.Before(t.Earliest)) {
		t.Earliest = other.Earliest
	}
	if other.Latest.After(t.Latest) {
		t.Latest = other.Latest
	}
}

// aggregator holds the per-call state of one window. It is not shared
// between goroutines; the graph it reads is.
type aggregator struct {
	store Store
	graph *conversion.Graph
	units map[int64]domain.Unit
}

func newAggregator(store Store, graph *conversion.Graph) *aggregator {
	return &aggregator{store: store, graph: graph, units: make(map[int64]domain.Unit)}
}

func (a *aggregator) unit(ctx context.Context, id int64) (domain.Unit, error) {
	if u, ok := a.units[id]; ok {
		return u, nil
	}
	u, err := a.store.Unit(ctx, id)
	if err != nil {
		return domain.Unit{}, storageErr(err, "unit %d", id)
	}
	a.units[id] = u
	return u, nil
}

func (a *aggregator) aggregate(ctx context.Context, target Target, w Window) (Total, error) {
	return a.visit(ctx, target, w, make(map[int64]bool))
}

func (a *aggregator) visit(ctx context.Context, target Target, w Window, path map[int64]bool) (Total, error) {
	if err := ctx.Err(); err != nil {
		return Total{}, err
	}
	switch target.Kind {
	case domain.KindMeter:
		return a.meter(ctx, target.ID, w)
	case domain.KindGroup:
		return a.group(ctx, target.ID, w, path)
	default:
		return Total{}, fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidArgument, target.Kind)
	}
}

func (a *aggregator) meter(ctx context.Context, id int64, w Window) (Total, error) {
	m, err := a.store.Meter(ctx, id)
	if err != nil {
		return Total{}, storageErr(err, "meter %d", id)
	}
	u, err := a.unit(ctx, m.UnitID)
	if err != nil {
		return Total{}, err
	}
	represent := m.UnitRepresent
	if represent == "" {
		represent = u.UnitRepresent
	}
	if represent != domain.RepresentQuantity && represent != domain.RepresentFlow {
		return Total{}, fmt.Errorf("%w: meter %d is %q", domain.ErrUnsupportedRepresent, id, represent)
	}

	readings, err := a.store.ReadingsInRange(ctx, id, w.Start, w.End)
	if err != nil {
		return Total{}, storageErr(err, "readings for meter %d", id)
	}
	sort.SliceStable(readings, func(i, j int) bool { return readings[i].Start.Before(readings[j].Start) })

	basis := Basis{Represent: represent, SecInRate: u.SecInRate}
	total := Total{UnitID: m.UnitID}
	for _, r := range readings {
		if !r.Start.Before(r.End) || !r.End.After(w.Start) || !r.Start.Before(w.End) {
			continue
		}
		total.Value += basis.Allocate(r, w)
		total.observe(Total{Readings: 1, Earliest: r.Start, Latest: r.End})
	}
	return total, nil
}

func (a *aggregator) group(ctx context.Context, id int64, w Window, path map[int64]bool) (Total, error) {
	if path[id] {
		return Total{}, fmt.Errorf("%w: group %d contains itself", domain.ErrCyclicGroup, id)
	}
	g, err := a.store.Group(ctx, id)
	if err != nil {
		return Total{}, storageErr(err, "group %d", id)
	}
	members, err := a.store.GroupMembers(ctx, id)
	if err != nil {
		return Total{}, storageErr(err, "members of group %d", id)
	}
	sortMembers(members)

	path[id] = true
	defer delete(path, id)

	totals := make([]Total, len(members))
	for i, mb := range members {
		totals[i], err = a.visit(ctx, Target{ID: mb.ID, Kind: mb.Kind}, w, path)
		if err != nil {
			return Total{}, err
		}
	}

	basis := g.DefaultGraphicUnitID
	for i := 0; basis == 0 && i < len(totals); i++ {
		basis = totals[i].UnitID
	}
	out := Total{UnitID: basis}
	for i, t := range totals {
		out.observe(t)
		if t.UnitID == 0 {
			// empty nested group
			continue
		}
		tr, err := a.graph.Resolve(t.UnitID, basis)
		if err != nil {
			return Total{}, fmt.Errorf("%w: group %d member %s unit %d has no path to basis unit %d",
				domain.ErrIncompatibleUnits, id, Target{ID: members[i].ID, Kind: members[i].Kind}, t.UnitID, basis)
		}
		out.Value += tr.Apply(t.Value)
	}
	return out, nil
}

// sortMembers fixes summation order: meters before groups, then by id.
func sortMembers(members []domain.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Kind != members[j].Kind {
			return members[i].Kind == domain.KindMeter
		}
		return members[i].ID < members[j].ID
	})
}

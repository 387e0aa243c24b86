package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

// ReadingStore returns the readings of a meter whose interval intersects
// [start, end).
type ReadingStore interface {
	ReadingsInRange(ctx context.Context, meterID int64, start, end time.Time) ([]domain.Reading, error)
}

// EntityStore looks up meters, groups and direct group members.
// Missing ids are reported as domain.ErrNotFound.
type EntityStore interface {
	Meter(ctx context.Context, id int64) (domain.Meter, error)
	Group(ctx context.Context, id int64) (domain.Group, error)
	GroupMembers(ctx context.Context, groupID int64) ([]domain.Member, error)
}

type UnitStore interface {
	Unit(ctx context.Context, id int64) (domain.Unit, error)
	Conversions(ctx context.Context) ([]domain.Conversion, error)
}

type Store interface {
	ReadingStore
	EntityStore
	UnitStore
}

// storageErr passes not-found errors through and tags anything else as a
// storage failure.
func storageErr(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, msg, err)
}

func invalidWindowf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidWindow, fmt.Sprintf(format, args...))
}

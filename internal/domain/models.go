package domain

import "time"

// UnitRepresent describes how values in a unit are to be interpreted.
type UnitRepresent string

const (
	RepresentQuantity UnitRepresent = "quantity"
	RepresentFlow     UnitRepresent = "flow"
	RepresentRaw      UnitRepresent = "raw"
)

type UnitType string

const (
	UnitTypeUnit   UnitType = "unit"
	UnitTypeMeter  UnitType = "meter"
	UnitTypeSuffix UnitType = "suffix"
)

// EntityKind tags the target of an aggregation.
type EntityKind string

const (
	KindMeter EntityKind = "meter"
	KindGroup EntityKind = "group"
)

// DefaultSecInRate is the number of seconds a rate unit is expressed over (per hour).
const DefaultSecInRate = 3600

type Unit struct {
	ID            int64         `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	UnitRepresent UnitRepresent `db:"unit_represent" json:"unitRepresent"`
	SecInRate     float64       `db:"sec_in_rate" json:"secInRate"`
	TypeOfUnit    UnitType      `db:"type_of_unit" json:"typeOfUnit"`
	Displayable   bool          `db:"displayable" json:"displayable"`
}

type Conversion struct {
	SourceID      int64   `db:"source_id" json:"sourceId"`
	DestinationID int64   `db:"destination_id" json:"destinationId"`
	Slope         float64 `db:"slope" json:"slope"`
	Intercept     float64 `db:"intercept" json:"intercept"`
	Bidirectional bool    `db:"bidirectional" json:"bidirectional"`
}

type Meter struct {
	ID            int64         `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	UnitID        int64         `db:"unit_id" json:"unitId"`
	UnitRepresent UnitRepresent `db:"unit_represent" json:"unitRepresent"`
	Enabled       bool          `db:"enabled" json:"enabled"`
	Displayable   bool          `db:"displayable" json:"displayable"`
}

type Group struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	// DefaultGraphicUnitID is zero when the group has no configured unit.
	DefaultGraphicUnitID int64 `db:"default_graphic_unit" json:"defaultGraphicUnitId"`
}

// Member is one direct child of a group.
type Member struct {
	ID   int64      `db:"member_id" json:"id"`
	Kind EntityKind `db:"member_kind" json:"kind"`
}

// Reading covers the half-open interval [Start, End).
type Reading struct {
	MeterID int64     `db:"meter_id" json:"meterId"`
	Start   time.Time `db:"start_timestamp" json:"startTimestamp"`
	End     time.Time `db:"end_timestamp" json:"endTimestamp"`
	Value   float64   `db:"reading" json:"reading"`
}

// Duration of the reading interval.
func (r Reading) Duration() time.Duration { return r.End.Sub(r.Start) }

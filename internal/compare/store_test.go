package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

const tsLayout = "2006-01-02 15:04:05"

func ts(s string) time.Time {
	t, err := time.ParseInLocation(tsLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// memStore is a read-only in-memory Store. Readings are copied on the way
// out so concurrent aggregations never share a slice.
type memStore struct {
	units    map[int64]domain.Unit
	convs    []domain.Conversion
	meters   map[int64]domain.Meter
	groups   map[int64]domain.Group
	members  map[int64][]domain.Member
	readings map[int64][]domain.Reading

	readingsErr error
	convsErr    error
}

func newMemStore() *memStore {
	return &memStore{
		units:    map[int64]domain.Unit{},
		meters:   map[int64]domain.Meter{},
		groups:   map[int64]domain.Group{},
		members:  map[int64][]domain.Member{},
		readings: map[int64][]domain.Reading{},
	}
}

func (s *memStore) ReadingsInRange(_ context.Context, meterID int64, start, end time.Time) ([]domain.Reading, error) {
	if s.readingsErr != nil {
		return nil, s.readingsErr
	}
	var out []domain.Reading
	for _, r := range s.readings[meterID] {
		if r.End.After(start) && r.Start.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) Meter(_ context.Context, id int64) (domain.Meter, error) {
	m, ok := s.meters[id]
	if !ok {
		return domain.Meter{}, fmt.Errorf("meter %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (s *memStore) Group(_ context.Context, id int64) (domain.Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return domain.Group{}, fmt.Errorf("group %d: %w", id, domain.ErrNotFound)
	}
	return g, nil
}

func (s *memStore) GroupMembers(_ context.Context, groupID int64) ([]domain.Member, error) {
	return append([]domain.Member(nil), s.members[groupID]...), nil
}

func (s *memStore) Unit(_ context.Context, id int64) (domain.Unit, error) {
	u, ok := s.units[id]
	if !ok {
		return domain.Unit{}, fmt.Errorf("unit %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (s *memStore) Conversions(context.Context) ([]domain.Conversion, error) {
	if s.convsErr != nil {
		return nil, s.convsErr
	}
	return s.convs, nil
}

func (s *memStore) addQuarterHours(meterID int64, from, to time.Time, value func(time.Time) float64) {
	for t := from; t.Before(to); t = t.Add(15 * time.Minute) {
		s.readings[meterID] = append(s.readings[meterID], domain.Reading{
			MeterID: meterID, Start: t, End: t.Add(15 * time.Minute), Value: value(t),
		})
	}
}

var errDisk = errors.New("disk on fire")

const (
	unitKWh      = 1
	unitMJ       = 2
	unitCelsius  = 3
	unitKW       = 4
	unitElecMtr  = 10
	unitGasMtr   = 11
	unitTempMtr  = 12
	unitPowerMtr = 13

	meterElec  = 100
	meterGas   = 101
	meterTemp  = 102
	meterPower = 103
	meterElec2 = 104

	groupCampus = 200
	groupOuter  = 201
	groupEmpty  = 202
)

// campusStore holds an electric meter in kWh and a gas meter in MJ, both
// with 15 minute readings from 2022-10-01 to 2022-11-01, in a group whose
// graphic unit is kWh. Electric readings equal the day of month; gas
// readings are a constant 9 MJ.
func campusStore() *memStore {
	s := newMemStore()
	s.units[unitKWh] = domain.Unit{ID: unitKWh, Name: "kWh", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeUnit}
	s.units[unitMJ] = domain.Unit{ID: unitMJ, Name: "MJ", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeUnit}
	s.units[unitCelsius] = domain.Unit{ID: unitCelsius, Name: "C", UnitRepresent: domain.RepresentRaw, TypeOfUnit: domain.UnitTypeUnit}
	s.units[unitKW] = domain.Unit{ID: unitKW, Name: "kW", UnitRepresent: domain.RepresentFlow, SecInRate: 3600, TypeOfUnit: domain.UnitTypeUnit}
	s.units[unitElecMtr] = domain.Unit{ID: unitElecMtr, Name: "Electric_Utility", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeMeter}
	s.units[unitGasMtr] = domain.Unit{ID: unitGasMtr, Name: "Natural_Gas_MJ", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeMeter}
	s.units[unitTempMtr] = domain.Unit{ID: unitTempMtr, Name: "Temperature", UnitRepresent: domain.RepresentRaw, TypeOfUnit: domain.UnitTypeMeter}
	s.units[unitPowerMtr] = domain.Unit{ID: unitPowerMtr, Name: "Electric_Power", UnitRepresent: domain.RepresentFlow, SecInRate: 3600, TypeOfUnit: domain.UnitTypeMeter}

	s.convs = []domain.Conversion{
		{SourceID: unitElecMtr, DestinationID: unitKWh, Slope: 1},
		{SourceID: unitGasMtr, DestinationID: unitMJ, Slope: 1},
		{SourceID: unitKWh, DestinationID: unitMJ, Slope: 3.6, Bidirectional: true},
		{SourceID: unitTempMtr, DestinationID: unitCelsius, Slope: 1},
		{SourceID: unitPowerMtr, DestinationID: unitKWh, Slope: 1},
	}

	s.meters[meterElec] = domain.Meter{ID: meterElec, Name: "Electric", UnitID: unitElecMtr, UnitRepresent: domain.RepresentQuantity, Enabled: true, Displayable: true}
	s.meters[meterGas] = domain.Meter{ID: meterGas, Name: "Gas", UnitID: unitGasMtr, UnitRepresent: domain.RepresentQuantity, Enabled: true, Displayable: true}
	s.meters[meterTemp] = domain.Meter{ID: meterTemp, Name: "Temp", UnitID: unitTempMtr, UnitRepresent: domain.RepresentRaw, Enabled: true}
	s.meters[meterPower] = domain.Meter{ID: meterPower, Name: "Power", UnitID: unitPowerMtr, UnitRepresent: domain.RepresentFlow, Enabled: true}
	s.meters[meterElec2] = domain.Meter{ID: meterElec2, Name: "Electric 2", UnitID: unitElecMtr, UnitRepresent: domain.RepresentQuantity, Enabled: true}

	from, to := ts("2022-10-01 00:00:00"), ts("2022-11-01 00:00:00")
	s.addQuarterHours(meterElec, from, to, func(t time.Time) float64 { return float64(t.Day()) })
	s.addQuarterHours(meterGas, from, to, func(time.Time) float64 { return 9 })
	s.addQuarterHours(meterElec2, from, to, func(time.Time) float64 { return 1 })

	s.groups[groupCampus] = domain.Group{ID: groupCampus, Name: "Campus", DefaultGraphicUnitID: unitKWh}
	s.members[groupCampus] = []domain.Member{{ID: meterGas, Kind: domain.KindMeter}, {ID: meterElec, Kind: domain.KindMeter}}
	s.groups[groupOuter] = domain.Group{ID: groupOuter, Name: "Outer"}
	s.members[groupOuter] = []domain.Member{{ID: groupCampus, Kind: domain.KindGroup}, {ID: meterElec2, Kind: domain.KindMeter}}
	s.groups[groupEmpty] = domain.Group{ID: groupEmpty, Name: "Empty"}
	return s
}

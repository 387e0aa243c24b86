package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
	"github.com/ANIKETSHETTY47/meter-compare/internal/repository"
)

// Demo ids written by SeedDemo.
const (
	DemoUnitKWh      int64 = 1
	DemoUnitMJ       int64 = 2
	DemoUnitBTU      int64 = 3
	DemoUnitElectric int64 = 10
	DemoUnitGas      int64 = 11

	DemoMeterElectric int64 = 1
	DemoMeterGas      int64 = 2
	DemoGroupCampus   int64 = 1

	// DemoGasQuarterHourMJ is the constant gas use per 15 minute reading.
	DemoGasQuarterHourMJ = 9.0
)

const demoInterval = 15 * time.Minute

// DemoElectricKWh is the deterministic electric load for the 15 minute
// reading starting at t: a daily curve peaking mid afternoon, lower on
// weekends.
func DemoElectricKWh(t time.Time) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60
	load := 40 + 25*math.Sin(2*math.Pi*(hour-9)/24)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		load *= 0.6
	}
	return load / 4
}

// SeedDemo writes demo units, conversions, two meters in a group and 15
// minute readings covering [from, to).
func SeedDemo(ctx context.Context, repos *repository.Repos, from, to time.Time) error {
	units := []domain.Unit{
		{ID: DemoUnitKWh, Name: "kWh", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeUnit, Displayable: true},
		{ID: DemoUnitMJ, Name: "MJ", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeUnit, Displayable: true},
		{ID: DemoUnitBTU, Name: "BTU", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeUnit, Displayable: true},
		{ID: DemoUnitElectric, Name: "Electric_Utility", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeMeter},
		{ID: DemoUnitGas, Name: "Natural_Gas_MJ", UnitRepresent: domain.RepresentQuantity, SecInRate: 3600, TypeOfUnit: domain.UnitTypeMeter},
	}
	for i := range units {
		if err := repos.InsertUnit(ctx, &units[i]); err != nil {
			return fmt.Errorf("unit %s: %w", units[i].Name, err)
		}
	}

	convs := []domain.Conversion{
		{SourceID: DemoUnitElectric, DestinationID: DemoUnitKWh, Slope: 1},
		{SourceID: DemoUnitGas, DestinationID: DemoUnitMJ, Slope: 1},
		{SourceID: DemoUnitKWh, DestinationID: DemoUnitMJ, Slope: 3.6, Bidirectional: true},
		{SourceID: DemoUnitMJ, DestinationID: DemoUnitBTU, Slope: 947.8171203133, Bidirectional: true},
	}
	for i := range convs {
		if err := repos.InsertConversion(ctx, &convs[i]); err != nil {
			return fmt.Errorf("conversion %d->%d: %w", convs[i].SourceID, convs[i].DestinationID, err)
		}
	}

	meters := []domain.Meter{
		{ID: DemoMeterElectric, Name: "Campus Electric", UnitID: DemoUnitElectric, UnitRepresent: domain.RepresentQuantity, Enabled: true, Displayable: true},
		{ID: DemoMeterGas, Name: "Campus Gas", UnitID: DemoUnitGas, UnitRepresent: domain.RepresentQuantity, Enabled: true, Displayable: true},
	}
	for i := range meters {
		if err := repos.InsertMeter(ctx, &meters[i]); err != nil {
			return fmt.Errorf("meter %s: %w", meters[i].Name, err)
		}
	}

	group := domain.Group{ID: DemoGroupCampus, Name: "Campus", DefaultGraphicUnitID: DemoUnitKWh}
	if err := repos.InsertGroup(ctx, &group); err != nil {
		return fmt.Errorf("group %s: %w", group.Name, err)
	}
	for _, id := range []int64{DemoMeterElectric, DemoMeterGas} {
		if err := repos.AddGroupMember(ctx, group.ID, domain.Member{ID: id, Kind: domain.KindMeter}); err != nil {
			return fmt.Errorf("group member %d: %w", id, err)
		}
	}

	var readings []domain.Reading
	for t := from.UTC(); t.Before(to); t = t.Add(demoInterval) {
		end := t.Add(demoInterval)
		readings = append(readings,
			domain.Reading{MeterID: DemoMeterElectric, Start: t, End: end, Value: DemoElectricKWh(t)},
			domain.Reading{MeterID: DemoMeterGas, Start: t, End: end, Value: DemoGasQuarterHourMJ},
		)
	}
	if err := repos.InsertReadings(ctx, readings); err != nil {
		return err
	}
	log.Info().Int("readings", len(readings)).Time("from", from).Time("to", to).Msg("demo data seeded")
	return nil
}

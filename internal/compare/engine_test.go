package compare

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

const day = 24 * time.Hour

func campusRequest(start, end string, shift time.Duration) Request {
	return Request{
		Target:       groupTarget(groupCampus),
		CurrentStart: ts(start),
		CurrentEnd:   ts(end),
		Shift:        shift,
		UnitID:       unitKWh,
	}
}

func TestCompare_OneDayShift(t *testing.T) {
	res, err := NewEngine(campusStore()).Compare(context.Background(),
		campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", day))
	require.NoError(t, err)
	assert.InDelta(t, 68*31.0+170, res.Current, 1e-6)
	assert.InDelta(t, 68*30.0+170, res.Shifted, 1e-6)
	assert.Equal(t, [2]float64{res.Current, res.Shifted}, res.Pair())
	assert.Equal(t, ts("2022-10-30 00:00:00"), res.ShiftedWindow.Start)
	assert.Equal(t, ts("2022-10-30 17:00:00"), res.ShiftedWindow.End)
}

func TestCompare_WindowBeyondData(t *testing.T) {
	res, err := NewEngine(campusStore()).Compare(context.Background(),
		campusRequest("2022-10-30 00:00:00", "2022-11-01 15:00:00", 7*day))
	require.NoError(t, err)
	assert.InDelta(t, 6336.0, res.Current, 1e-6)
	assert.InDelta(t, 6642.0, res.Shifted, 1e-6)

	// bookkeeping shows the current window ran past the last reading
	assert.True(t, res.CurrentTotal.Latest.Before(res.CurrentWindow.End))
	assert.Equal(t, ts("2022-11-01 00:00:00"), res.CurrentTotal.Latest)
	assert.Equal(t, res.ShiftedWindow.End, res.ShiftedTotal.Latest)
}

func TestCompare_TwentyEightDayShift(t *testing.T) {
	res, err := NewEngine(campusStore()).Compare(context.Background(),
		campusRequest("2022-10-09 00:00:00", "2022-10-31 17:00:00", 28*day))
	require.NoError(t, err)
	// current: electric days 9..30 in full plus 68 quarter hours of day 31,
	// gas 2180 quarter hours at 2.5 kWh
	assert.InDelta(t, 96*429.0+68*31+2180*2.5, res.Current, 1e-6)
	// shifted window starts before the data; only Oct 1 to Oct 3 17:00 count
	assert.InDelta(t, 96*1.0+96*2+68*3+260*2.5, res.Shifted, 1e-6)
}

func TestCompare_FullDayToMidnight(t *testing.T) {
	res, err := NewEngine(campusStore()).Compare(context.Background(),
		campusRequest("2022-10-31 00:00:00", "2022-11-01 00:00:00", day))
	require.NoError(t, err)
	assert.InDelta(t, 96*31.0+96*2.5, res.Current, 1e-6)
	assert.InDelta(t, 96*30.0+96*2.5, res.Shifted, 1e-6)
	assert.Equal(t, ts("2022-11-01 00:00:00"), res.CurrentWindow.End)
}

func TestCompare_EndInsideHourIsTruncated(t *testing.T) {
	e := NewEngine(campusStore())
	for _, shift := range []time.Duration{day, 28 * day} {
		res, err := e.Compare(context.Background(),
			campusRequest("2022-10-09 00:00:00", "2022-10-31 17:12:34", shift))
		require.NoError(t, err)

		truncated, err := e.Compare(context.Background(),
			campusRequest("2022-10-09 00:00:00", "2022-10-31 17:00:00", shift))
		require.NoError(t, err)

		assert.Equal(t, truncated.Pair(), res.Pair(), shift)
		assert.Equal(t, ts("2022-10-31 17:00:00"), res.CurrentWindow.End)
		assert.Equal(t, ts("2022-10-31 17:00:00").Add(-shift), res.ShiftedWindow.End)
	}
}

func TestCompare_SubHourWindowKeepsEnd(t *testing.T) {
	res, err := NewEngine(campusStore()).Compare(context.Background(),
		campusRequest("2022-10-31 17:00:00", "2022-10-31 17:30:00", day))
	require.NoError(t, err)
	assert.Equal(t, ts("2022-10-31 17:30:00"), res.CurrentWindow.End)
	assert.InDelta(t, 2*31.0+2*2.5, res.Current, 1e-9)
}

func TestCompare_ShiftInvariant(t *testing.T) {
	for _, shift := range []time.Duration{day, 7 * day, 28 * day, 90 * time.Minute} {
		res, err := NewEngine(campusStore()).Compare(context.Background(),
			campusRequest("2022-10-09 00:00:00", "2022-10-31 17:12:34", shift))
		require.NoError(t, err)
		assert.Equal(t, res.CurrentWindow.Duration(), res.ShiftedWindow.Duration())
		assert.Equal(t, res.CurrentWindow.Start.Add(-shift), res.ShiftedWindow.Start)
		assert.Equal(t, res.CurrentWindow.End.Add(-shift), res.ShiftedWindow.End)
	}
}

func TestCompare_ConvertsToGraphicUnit(t *testing.T) {
	e := NewEngine(campusStore())
	kwh, err := e.Compare(context.Background(), campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", day))
	require.NoError(t, err)

	req := campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", day)
	req.UnitID = unitMJ
	mj, err := e.Compare(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, kwh.Current*3.6, mj.Current, 1e-6)
	assert.InDelta(t, kwh.Shifted*3.6, mj.Shifted, 1e-6)
}

func TestCompare_MeterTarget(t *testing.T) {
	req := campusRequest("2022-10-31 00:00:00", "2022-11-01 00:00:00", day)
	req.Target = meterTarget(meterGas)
	req.UnitID = unitMJ
	res, err := NewEngine(campusStore()).Compare(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 96*9.0, res.Current, 1e-9)
	assert.InDelta(t, 96*9.0, res.Shifted, 1e-9)
}

func TestCompare_ParallelMatchesSerial(t *testing.T) {
	req := campusRequest("2022-10-09 03:00:00", "2022-10-31 17:12:34", 28*day)
	par, err := NewEngine(campusStore(), WithParallelWindows(true)).Compare(context.Background(), req)
	require.NoError(t, err)
	ser, err := NewEngine(campusStore(), WithParallelWindows(false)).Compare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, par.Pair(), ser.Pair())
}

func TestCompare_InvalidWindowRejectedBeforeFetch(t *testing.T) {
	s := campusStore()
	s.convsErr = errDisk
	s.readingsErr = errDisk
	e := NewEngine(s)

	cases := []Request{
		campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", 0),
		campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", -day),
		campusRequest("2022-10-31 17:00:00", "2022-10-31 17:00:00", day),
		campusRequest("2022-10-31 18:00:00", "2022-10-31 17:00:00", day),
	}
	for _, req := range cases {
		_, err := e.Compare(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidWindow)
		assert.NotErrorIs(t, err, domain.ErrStorage)
	}
}

func TestCompare_GraphicUnitErrors(t *testing.T) {
	e := NewEngine(campusStore())

	req := campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", day)
	req.UnitID = 999
	_, err := e.Compare(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	req.UnitID = unitCelsius
	_, err = e.Compare(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrNoConversionPath)
	assert.Contains(t, err.Error(), "unit 1 to unit 3")
}

func TestCompare_EntityNotFound(t *testing.T) {
	req := campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", day)
	req.Target = groupTarget(4242)
	_, err := NewEngine(campusStore()).Compare(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompare_EmptyGroupIsZero(t *testing.T) {
	req := campusRequest("2022-10-31 00:00:00", "2022-10-31 17:00:00", day)
	req.Target = groupTarget(groupEmpty)
	res, err := NewEngine(campusStore()).Compare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 0}, res.Pair())
}

func TestEngine_Convert(t *testing.T) {
	e := NewEngine(campusStore())
	tr, err := e.Convert(context.Background(), unitMJ, unitKWh)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tr.Apply(3.6), 1e-12)

	_, err = e.Convert(context.Background(), unitKWh, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPnLCurve_Shape(t *testing.T) {
	curve := BuildPnLCurve(150, 150, 30.0/365, 0.045, 0.30, Call, 4.71, 0)

	require.NotEmpty(t, curve)
	assert.LessOrEqual(t, len(curve), 80)

	// Spot prices must be strictly increasing and span 70%-130%
	for i := 1; i < len(curve); i++ {
		assert.Greater(t, curve[i].Price, curve[i-1].Price)
	}
	assert.InDelta(t, 150*0.70, curve[0].Price, 0.01)
	assert.InDelta(t, 150*1.30, curve[len(curve)-1].Price, 0.01)
}

func TestBuildPnLCurve_ZeroPremiumAtSpot(t *testing.T) {
	s, k, tt, r, sigma := 150.0, 150.0, 30.0/365, 0.045, 0.30
	curve := BuildPnLCurve(s, k, tt, r, sigma, Call, 0, 0)
	require.NotEmpty(t, curve)

	g, err := CalculateGreeks(s, k, tt, r, sigma, Call)
	require.NoError(t, err)

	// With premium 0 and no decay, pnl at the original spot equals price*100.
	// The sweep grid does not land exactly on S, so find the closest point.
	closest := curve[0]
	for _, p := range curve {
		if abs(p.Price-s) < abs(closest.Price-s) {
			closest = p
		}
	}
	assert.InDelta(t, g.Price*100, closest.PnL, 40) // one grid step of slack
	assert.InDelta(t, s, closest.Price, 0.6)
}

func TestBuildPnLCurve_TimeDecayFloor(t *testing.T) {
	// Held past expiry: curve is priced at the floor, not negative time
	curve := BuildPnLCurve(150, 150, 10.0/365, 0.045, 0.30, Call, 2.0, 30)
	require.NotEmpty(t, curve)

	// At the floor the OTM tail should be worth ~0, i.e. pnl ~= -premium*100
	assert.InDelta(t, -200, curve[0].PnL, 1.0)
}

func TestBuildPnLCurve_ThetaDecayLowersValue(t *testing.T) {
	day0 := BuildPnLCurve(150, 150, 30.0/365, 0.045, 0.30, Call, 4.71, 0)
	day10 := BuildPnLCurve(150, 150, 30.0/365, 0.045, 0.30, Call, 4.71, 10)
	require.NotEmpty(t, day0)
	require.NotEmpty(t, day10)

	// ATM midpoint loses value as time passes
	mid := len(day0) / 2
	assert.Less(t, day10[mid].PnL, day0[mid].PnL)
}

func TestBuildScenarioCurves_DefaultSchedule(t *testing.T) {
	scenarios := BuildScenarioCurves(150, 150, 30.0/365, 0.045, 0.30, Put, 3.5, nil)

	require.Len(t, scenarios, 5)
	for i, days := range []int{0, 5, 10, 15, 20} {
		assert.Equal(t, days, scenarios[i].Days)
		assert.NotEmpty(t, scenarios[i].Curve)
	}
}

func TestBuildScenarioCurves_CustomSchedule(t *testing.T) {
	scenarios := BuildScenarioCurves(150, 150, 60.0/365, 0.045, 0.30, Call, 5.0, []int{0, 30})
	require.Len(t, scenarios, 2)
	assert.Equal(t, 0, scenarios[0].Days)
	assert.Equal(t, 30, scenarios[1].Days)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

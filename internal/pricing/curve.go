package pricing

// CurvePoint 盈亏曲线上的一个点：假设标的价与对应的单张合约盈亏（美元）。
type CurvePoint struct {
	Price float64 `json:"price"`
	PnL   float64 `json:"pnl"`
}

// Scenario 某个持仓天数下的完整盈亏曲线
type Scenario struct {
	Days  int          `json:"days"`
	Curve []CurvePoint `json:"curve"`
}

const (
	curvePoints   = 80
	curveLowRatio = 0.70
	curveHiRatio  = 1.30
	// 到期日当天按剩余 0.001 年（最后可表示时刻）定价，避免除零
	minTimeToExpiry = 0.001
	contractShares  = 100
)

// DefaultHorizons 多情景模拟的默认持仓天数梯度
var DefaultHorizons = []int{0, 5, 10, 15, 20}

// BuildPnLCurve 对已开仓头寸做盯市盈亏扫描：
// 在 [0.70*S, 1.30*S] 上均匀取 80 个假设标的价，按持仓天数衰减剩余期限，
// 每个点的盈亏 = (该价位的理论期权价 - 已付权利金) * 100。
// 定价无效的点直接省略，因此曲线长度可能小于 80，但标的价严格递增。
func BuildPnLCurve(s, k, t, r, sigma float64, kind OptionKind, premiumPaid float64, daysHeld int) []CurvePoint {
	tRemaining := t - float64(daysHeld)/365
	if tRemaining < minTimeToExpiry {
		tRemaining = minTimeToExpiry
	}

	low := s * curveLowRatio
	step := (s*curveHiRatio - low) / (curvePoints - 1)

	curve := make([]CurvePoint, 0, curvePoints)
	for i := 0; i < curvePoints; i++ {
		target := low + float64(i)*step
		g, err := CalculateGreeks(target, k, tRemaining, r, sigma, kind)
		if err != nil {
			continue
		}
		curve = append(curve, CurvePoint{
			Price: round(target, 2),
			PnL:   round((g.Price-premiumPaid)*contractShares, 2),
		})
	}
	return curve
}

// BuildScenarioCurves 按持仓天数梯度生成多条盈亏曲线，展示 theta 衰减对盈亏形态的影响。
// horizons 为空时使用 DefaultHorizons。
func BuildScenarioCurves(s, k, t, r, sigma float64, kind OptionKind, premiumPaid float64, horizons []int) []Scenario {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}

	scenarios := make([]Scenario, 0, len(horizons))
	for _, days := range horizons {
		scenarios = append(scenarios, Scenario{
			Days:  days,
			Curve: BuildPnLCurve(s, k, t, r, sigma, kind, premiumPaid, days),
		})
	}
	return scenarios
}

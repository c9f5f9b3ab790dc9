package pricing

import (
	"errors"
	"math"
)

var (
	// ErrUndefined 输入不合法（非正的 S/K/T/sigma），无法定价
	ErrUndefined = errors.New("定价输入不合法，无法计算")
	// ErrNotFinite 计算过程中出现数值溢出
	ErrNotFinite = errors.New("定价计算数值溢出")
)

// OptionKind 期权类型
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// Valid 校验期权类型
func (k OptionKind) Valid() bool {
	return k == Call || k == Put
}

// Greeks 定价结果：理论价与五个希腊字母。
// theta 按每日历日衰减，vega/rho 按每 1 个百分点敏感度。
type Greeks struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// CalculateGreeks Black-Scholes 闭式定价。
// S 标的价，K 行权价，T 到期时间（年），r 无风险利率，sigma 波动率。
func CalculateGreeks(s, k, t, r, sigma float64, kind OptionKind) (*Greeks, error) {
	if s <= 0 || k <= 0 || t <= 0 || sigma <= 0 {
		return nil, ErrUndefined
	}
	if !kind.Valid() {
		return nil, ErrUndefined
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discount := math.Exp(-r * t)

	var price, delta, theta, rho float64
	if kind == Call {
		price = s*normCDF(d1) - k*discount*normCDF(d2)
		delta = normCDF(d1)
		theta = (-(s*normPDF(d1)*sigma)/(2*sqrtT) - r*k*discount*normCDF(d2)) / 365
		rho = k * t * discount * normCDF(d2) / 100
	} else {
		price = k*discount*normCDF(-d2) - s*normCDF(-d1)
		delta = normCDF(d1) - 1
		theta = (-(s*normPDF(d1)*sigma)/(2*sqrtT) + r*k*discount*normCDF(-d2)) / 365
		rho = -k * t * discount * normCDF(-d2) / 100
	}

	gamma := normPDF(d1) / (s * sigma * sqrtT)
	vega := s * normPDF(d1) * sqrtT / 100

	g := &Greeks{
		Price: round(price, 4),
		Delta: round(delta, 4),
		Gamma: round(gamma, 6),
		Theta: round(theta, 4),
		Vega:  round(vega, 4),
		Rho:   round(rho, 4),
	}

	for _, v := range []float64{g.Price, g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNotFinite
		}
	}

	return g, nil
}

// normCDF 标准正态分布函数
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// normPDF 标准正态密度函数
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

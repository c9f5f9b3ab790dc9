package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/marketdata"
	"github.com/qs3c/options_go_server/internal/pricing"
)

var ErrNoTicker = errors.New("请输入标的代码")

// 手动输入缺省值，与前端表单的占位值一致
const (
	fallbackStockPrice = 150.0
	fallbackIV         = 0.30
	maxExpirations     = 12
)

// OptionService 期权定价分析：组装行情数据和定价引擎。
// 行情源不可用时静默回退到请求里的手动值，定价本身从不依赖外部服务。
type OptionService struct {
	market *marketdata.Client
	cfg    *config.Config
}

func NewOptionService(market *marketdata.Client, cfg *config.Config) *OptionService {
	return &OptionService{
		market: market,
		cfg:    cfg,
	}
}

// Autofill 返回标的现价和最近的到期日列表
func (s *OptionService) Autofill(ctx context.Context, req *dto.AutofillRequest) (*dto.AutofillResponse, error) {
	ticker := normalizeTicker(req.Ticker)
	if ticker == "" {
		return nil, ErrNoTicker
	}

	expirations, err := s.market.GetExpirations(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(expirations) > maxExpirations {
		expirations = expirations[:maxExpirations]
	}

	resp := &dto.AutofillResponse{
		Ticker:      ticker,
		Expirations: expirations,
	}

	if quote, err := s.market.GetQuote(ctx, ticker); err == nil {
		resp.StockPrice = round2(quote.Price)
	} else {
		log.Printf("Autofill: quote unavailable for %s: %v", ticker, err)
	}

	return resp, nil
}

// Strikes 返回指定到期日的行权价列表
func (s *OptionService) Strikes(ctx context.Context, req *dto.StrikesRequest) (*dto.StrikesResponse, error) {
	strikes, err := s.market.GetStrikes(ctx, normalizeTicker(req.Ticker), req.Expiration, optionTypeOrDefault(req.OptionType))
	if err != nil {
		return nil, err
	}
	return &dto.StrikesResponse{Strikes: strikes}, nil
}

// Contract 返回单个合约的实时行情
func (s *OptionService) Contract(ctx context.Context, req *dto.ContractRequest) (*dto.ContractResponse, error) {
	live, err := s.fetchLive(ctx, normalizeTicker(req.Ticker), req.Expiration, req.Strike, optionTypeOrDefault(req.OptionType))
	if err != nil {
		return nil, err
	}
	return live, nil
}

// Greeks 单次定价分析：可选实时行情增强，计算希腊字母和持仓盈亏曲线
func (s *OptionService) Greeks(ctx context.Context, req *dto.GreeksRequest, now time.Time) (*dto.GreeksResponse, error) {
	ticker := normalizeTicker(req.Ticker)
	optionType := optionTypeOrDefault(req.OptionType)

	r := req.R
	if r == 0 {
		r = s.cfg.Pricing.DefaultRiskFreeRate
	}
	thetaAlert := req.ThetaAlert
	if thetaAlert == 0 {
		thetaAlert = 50
	}

	// 行情增强失败不阻塞定价
	var live *dto.ContractResponse
	if req.Expiration != "" && ticker != "" {
		var err error
		live, err = s.fetchLive(ctx, ticker, req.Expiration, req.Strike, optionType)
		if err != nil {
			log.Printf("Greeks: live data unavailable for %s %s: %v", ticker, req.Expiration, err)
			live = nil
		}
	}

	// 到期时间优先按到期日计算，解析失败回退到 DTE 输入
	var tYears float64
	var dteDays int
	if req.Expiration != "" {
		if expDate, err := time.Parse("2006-01-02", req.Expiration); err == nil {
			days := int(expDate.Sub(now).Hours() / 24)
			tYears = math.Max(float64(days)/365, 0.001)
			dteDays = days
			if dteDays < 1 {
				dteDays = 1
			}
		} else {
			tYears = float64(s.cfg.Pricing.DefaultDTE) / 365
			dteDays = s.cfg.Pricing.DefaultDTE
		}
	} else {
		dteDays = req.DTE
		if dteDays <= 0 {
			dteDays = s.cfg.Pricing.DefaultDTE
		}
		tYears = float64(dteDays) / 365
	}

	stockPrice := req.StockPrice
	if live != nil && live.StockPrice > 0 {
		stockPrice = live.StockPrice
	}
	if stockPrice == 0 {
		stockPrice = fallbackStockPrice
	}

	sigma := req.IV
	if live != nil && live.IV > 0 {
		sigma = live.IV
	}
	if sigma == 0 {
		sigma = fallbackIV
	}

	premium := req.PremiumPaid
	if live != nil && live.Mark > 0 {
		premium = live.Mark
	}

	greeks, err := pricing.CalculateGreeks(stockPrice, req.Strike, tYears, r, sigma, pricing.OptionKind(optionType))
	if err != nil {
		return nil, err
	}

	curve := pricing.BuildPnLCurve(stockPrice, req.Strike, tYears, r, sigma, pricing.OptionKind(optionType), premium, req.DaysHeld)

	dailyTheta := round2(greeks.Theta * 100)

	return &dto.GreeksResponse{
		Greeks:            greeks,
		LiveData:          live,
		PnLCurve:          curve,
		StockPrice:        stockPrice,
		PremiumPaid:       premium,
		Sigma:             sigma,
		DailyThetaDollars: dailyTheta,
		ThetaAlert:        math.Abs(dailyTheta) > thetaAlert,
		DTEDays:           dteDays,
	}, nil
}

// Simulate 多持有期情景模拟
func (s *OptionService) Simulate(req *dto.SimulateRequest) (*dto.SimulateResponse, error) {
	r := req.R
	if r == 0 {
		r = s.cfg.Pricing.DefaultRiskFreeRate
	}

	horizons := req.Horizons
	if len(horizons) == 0 {
		horizons = pricing.DefaultHorizons
	}

	scenarios := pricing.BuildScenarioCurves(
		req.StockPrice, req.Strike, float64(req.DTE)/365, r, req.IV,
		pricing.OptionKind(optionTypeOrDefault(req.OptionType)), req.PremiumPaid, horizons)

	return &dto.SimulateResponse{Scenarios: scenarios}, nil
}

// fetchLive 拉取合约行情并收敛成统一的响应结构
func (s *OptionService) fetchLive(ctx context.Context, ticker, expiration string, strike float64, optionType string) (*dto.ContractResponse, error) {
	contract, err := s.market.GetContract(ctx, ticker, expiration, strike, optionType)
	if err != nil {
		return nil, err
	}

	resp := &dto.ContractResponse{
		IV:     contract.ImpliedVolatility,
		Mark:   contract.Mark,
		Source: "live",
	}

	if quote, err := s.market.GetQuote(ctx, ticker); err == nil {
		resp.StockPrice = quote.Price
	}

	return resp, nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func optionTypeOrDefault(optionType string) string {
	if optionType == "" {
		return string(pricing.Call)
	}
	return optionType
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

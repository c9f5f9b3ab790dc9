package dto

import (
	"github.com/qs3c/options_go_server/internal/pricing"
)

// AutofillRequest 标的自动填充请求
type AutofillRequest struct {
	Ticker string `json:"ticker" binding:"required,max=20"`
}

// AutofillResponse 标的自动填充响应：现价 + 最近的到期日列表
type AutofillResponse struct {
	Ticker      string   `json:"ticker"`
	StockPrice  float64  `json:"stock_price,omitempty"`
	Expirations []string `json:"expirations"`
}

// StrikesRequest 行权价列表请求
type StrikesRequest struct {
	Ticker     string `json:"ticker" binding:"required,max=20"`
	Expiration string `json:"expiration" binding:"required"`
	OptionType string `json:"option_type" binding:"omitempty,oneof=call put"`
}

// StrikesResponse 行权价列表响应
type StrikesResponse struct {
	Strikes []float64 `json:"strikes"`
}

// ContractRequest 合约行情请求
type ContractRequest struct {
	Ticker     string  `json:"ticker" binding:"required,max=20"`
	Expiration string  `json:"expiration" binding:"required"`
	Strike     float64 `json:"strike" binding:"required,gt=0"`
	OptionType string  `json:"option_type" binding:"omitempty,oneof=call put"`
}

// ContractResponse 合约行情响应（任一字段缺失说明数据源不可用，前端回退手动输入）
type ContractResponse struct {
	StockPrice float64 `json:"stock_price,omitempty"`
	IV         float64 `json:"iv,omitempty"`
	Mark       float64 `json:"mark,omitempty"`
	Source     string  `json:"source"`
}

// GreeksRequest 定价分析请求。
// 提供 ticker+expiration 时尝试实时行情，取不到或缺字段时回退到手动值。
type GreeksRequest struct {
	Ticker      string  `json:"ticker"`
	Strike      float64 `json:"strike" binding:"required,gt=0"`
	Expiration  string  `json:"expiration"`
	OptionType  string  `json:"option_type" binding:"omitempty,oneof=call put"`
	DaysHeld    int     `json:"days_held" binding:"omitempty,min=0"`
	R           float64 `json:"r"`
	DTE         int     `json:"dte" binding:"omitempty,min=1"`
	StockPrice  float64 `json:"stock_price"`
	IV          float64 `json:"iv"`
	PremiumPaid float64 `json:"premium_paid"`
	ThetaAlert  float64 `json:"theta_alert"`
}

// GreeksResponse 定价分析响应
type GreeksResponse struct {
	Greeks            *pricing.Greeks      `json:"greeks"`
	LiveData          *ContractResponse    `json:"live_data,omitempty"`
	PnLCurve          []pricing.CurvePoint `json:"pnl_curve"`
	StockPrice        float64              `json:"stock_price"`
	PremiumPaid       float64              `json:"premium_paid"`
	Sigma             float64              `json:"sigma"`
	DailyThetaDollars float64              `json:"daily_theta_dollars"`
	ThetaAlert        bool                 `json:"theta_alert"`
	DTEDays           int                  `json:"dte_days"`
}

// SimulateRequest 多情景模拟请求
type SimulateRequest struct {
	StockPrice  float64 `json:"stock_price" binding:"required,gt=0"`
	Strike      float64 `json:"strike" binding:"required,gt=0"`
	DTE         int     `json:"dte" binding:"required,min=1"`
	R           float64 `json:"r"`
	IV          float64 `json:"iv" binding:"required,gt=0"`
	OptionType  string  `json:"option_type" binding:"omitempty,oneof=call put"`
	PremiumPaid float64 `json:"premium_paid"`
	Horizons    []int   `json:"horizons" binding:"omitempty,max=10,dive,min=0"`
}

// SimulateResponse 多情景模拟响应
type SimulateResponse struct {
	Scenarios []pricing.Scenario `json:"scenarios"`
}

package dto

// StockPick AI 扫描结果中的一只股票
type StockPick struct {
	Ticker       string  `json:"ticker"`
	Company      string  `json:"company"`
	Score        int     `json:"score"`
	Theme        string  `json:"theme"`
	Why          string  `json:"why"`
	Catalyst     string  `json:"catalyst"`
	Risk         string  `json:"risk"`
	Timeframe    string  `json:"timeframe"`
	Type         string  `json:"type"`
	CurrentPrice float64 `json:"current_price,omitempty"`
	ChangePct    float64 `json:"change_pct,omitempty"`
}

// ScanResponse 扫描结果响应
type ScanResponse struct {
	Stocks  []StockPick `json:"stocks"`
	Cached  bool        `json:"cached"`
	Date    string      `json:"date"`
	Theme   string      `json:"theme,omitempty"`
	Message string      `json:"message"`
}

// ThemeScanRequest 主题扫描请求
type ThemeScanRequest struct {
	Theme string `json:"theme" binding:"required"`
}

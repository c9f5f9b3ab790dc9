package dto

// CreateJournalRequest 创建交易日志请求
type CreateJournalRequest struct {
	Ticker     string  `json:"ticker" binding:"required,max=20"`
	Strategy   string  `json:"strategy" binding:"omitempty,max=100"`
	OptionType string  `json:"option_type" binding:"omitempty,oneof=call put"`
	Strike     float64 `json:"strike" binding:"omitempty,gt=0"`
	Expiration string  `json:"expiration"` // YYYY-MM-DD
	Contracts  int     `json:"contracts" binding:"omitempty,min=1"`
	EntryPrice float64 `json:"entry_price" binding:"omitempty,gte=0"`
	Thesis     string  `json:"thesis"`
	Notes      string  `json:"notes"`
	Tags       string  `json:"tags" binding:"omitempty,max=200"`
}

// UpdateJournalRequest 更新交易日志请求（平仓、补充笔记等）
type UpdateJournalRequest struct {
	ExitPrice   *float64 `json:"exit_price,omitempty" binding:"omitempty,gte=0"`
	RealizedPnL *float64 `json:"realized_pnl,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Tags        *string  `json:"tags,omitempty" binding:"omitempty,max=200"`
	Status      *string  `json:"status,omitempty" binding:"omitempty,oneof=open closed expired"`
}

// CreateAlertRequest 创建价格预警请求
type CreateAlertRequest struct {
	Ticker    string  `json:"ticker" binding:"required,max=20"`
	AlertType string  `json:"alert_type" binding:"required,oneof=price_above price_below"`
	Threshold float64 `json:"threshold" binding:"required,gt=0"`
	Message   string  `json:"message" binding:"omitempty,max=200"`
}

package marketdata

// Quote 标的现价快照
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	PrevClose float64 `json:"prev_close"`
}

// ChangePct 相对昨收的涨跌幅（百分比）；昨收缺失时返回 0
func (q *Quote) ChangePct() float64 {
	if q.PrevClose <= 0 {
		return 0
	}
	return (q.Price - q.PrevClose) / q.PrevClose * 100
}

// ContractQuote 单份期权合约的行情
type ContractQuote struct {
	Strike            float64 `json:"strike"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	Mark              float64 `json:"mark"`
}

// chainResponse 期权链接口的原始响应
type chainResponse struct {
	Symbol     string          `json:"symbol"`
	Expiration string          `json:"expiration"`
	Calls      []ContractQuote `json:"calls"`
	Puts       []ContractQuote `json:"puts"`
}

// expirationsResponse 到期日列表接口的原始响应
type expirationsResponse struct {
	Symbol      string   `json:"symbol"`
	Expirations []string `json:"expirations"`
}

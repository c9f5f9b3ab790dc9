package model

import (
	"time"
)

// TradeJournal 交易日志：用户手动记录的期权交易及其复盘
type TradeJournal struct {
	ID     int64 `gorm:"primaryKey" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Ticker     string     `gorm:"size:20;not null" json:"ticker"`
	Strategy   string     `gorm:"size:100" json:"strategy,omitempty"` // 如 Bull Call Spread、Iron Condor
	OptionType string     `gorm:"size:10" json:"option_type,omitempty"`
	Strike     float64    `json:"strike,omitempty"`
	Expiration *time.Time `json:"expiration,omitempty"`
	Contracts  int        `gorm:"default:1" json:"contracts"`

	EntryPrice float64    `json:"entry_price,omitempty"`
	ExitPrice  float64    `json:"exit_price,omitempty"`
	EntryDate  time.Time  `json:"entry_date"`
	ExitDate   *time.Time `json:"exit_date,omitempty"`

	RealizedPnL   float64 `json:"realized_pnl,omitempty"`
	UnrealizedPnL float64 `json:"unrealized_pnl,omitempty"`

	Thesis string `gorm:"type:text" json:"thesis,omitempty"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`
	Tags   string `gorm:"size:200" json:"tags,omitempty"`

	Status    string    `gorm:"size:20;default:open;index" json:"status"` // open, closed, expired
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (TradeJournal) TableName() string {
	return "trade_journal"
}

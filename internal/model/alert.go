package model

import (
	"time"
)

// 预警类型
const (
	AlertPriceAbove = "price_above"
	AlertPriceBelow = "price_below"
)

// Alert 价格预警：后台定时用行情数据评估，命中后通过 WebSocket 推送
type Alert struct {
	ID     int64 `gorm:"primaryKey" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Ticker    string  `gorm:"size:20;not null" json:"ticker"`
	AlertType string  `gorm:"size:50;not null" json:"alert_type"` // price_above, price_below
	Threshold float64 `json:"threshold"`
	Message   string  `gorm:"size:200" json:"message,omitempty"`

	IsActive    bool       `gorm:"default:true;index" json:"is_active"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Alert) TableName() string {
	return "alerts"
}

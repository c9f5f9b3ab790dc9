package model

import (
	"time"
)

// 套餐常量：trial < basic < elite 构成严格的等级序，expired 不在序内
const (
	PlanTrial   = "trial"
	PlanBasic   = "basic"
	PlanElite   = "elite"
	PlanExpired = "expired"
)

type User struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash *string `gorm:"size:255" json:"-"`
	GithubID     *string `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`

	// 订阅状态
	Plan              string     `gorm:"size:20;default:trial" json:"plan"` // trial, basic, elite, expired
	TrialStart        time.Time  `json:"trial_start"`
	TrialEnd          *time.Time `json:"trial_end,omitempty"`
	SubscriptionStart *time.Time `json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`

	// 支付方标识
	BillingCustomerID     *string `gorm:"size:100;uniqueIndex" json:"-"`
	BillingSubscriptionID *string `gorm:"size:100;uniqueIndex" json:"-"`

	// 用量统计
	AnalysesToday    int        `gorm:"default:0" json:"analyses_today"`
	LastAnalysisDate *time.Time `json:"last_analysis_date,omitempty"`

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// NormalizePlan 统一套餐名，历史数据里 elite 也写作 pro
func NormalizePlan(plan string) string {
	if plan == "pro" {
		return PlanElite
	}
	return plan
}

// PlanRank 套餐等级，数值越大权限越高；未知套餐（含 expired）为 0
func PlanRank(plan string) int {
	switch NormalizePlan(plan) {
	case PlanTrial:
		return 1
	case PlanBasic:
		return 2
	case PlanElite:
		return 3
	default:
		return 0
	}
}

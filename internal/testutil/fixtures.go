package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
)

// TestUser 创建测试用户，默认处于试用期
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	now := time.Now().UTC()
	trialEnd := now.Add(20 * 24 * time.Hour)
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000),
		Email:        fmt.Sprintf("test_%d@example.com", time.Now().UnixNano()),
		PasswordHash: &passwordHash,
		Plan:         model.PlanTrial,
		TrialStart:   now,
		TrialEnd:     &trialEnd,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPlan 设置套餐
func WithPlan(plan string) func(*model.User) {
	return func(u *model.User) {
		u.Plan = plan
	}
}

// WithTrialEnd 设置试用截止时间
func WithTrialEnd(end time.Time) func(*model.User) {
	return func(u *model.User) {
		u.TrialEnd = &end
	}
}

// WithNoTrialEnd 清空试用截止时间（构造脏数据场景）
func WithNoTrialEnd() func(*model.User) {
	return func(u *model.User) {
		u.TrialEnd = nil
	}
}

// WithSubscription 设置订阅套餐及到期时间
func WithSubscription(plan string, end time.Time) func(*model.User) {
	return func(u *model.User) {
		u.Plan = plan
		start := end.Add(-30 * 24 * time.Hour)
		u.SubscriptionStart = &start
		u.SubscriptionEnd = &end
	}
}

// WithBillingCustomer 设置支付方客户 ID
func WithBillingCustomer(customerID string) func(*model.User) {
	return func(u *model.User) {
		u.BillingCustomerID = &customerID
	}
}

// WithAnalysesToday 设置今日已用分析次数
func WithAnalysesToday(count int, date time.Time) func(*model.User) {
	return func(u *model.User) {
		u.AnalysesToday = count
		u.LastAnalysisDate = &date
	}
}

// WithGithubID 设置 GitHub 绑定
func WithGithubID(githubID string) func(*model.User) {
	return func(u *model.User) {
		u.GithubID = &githubID
		u.PasswordHash = nil
	}
}

// TestJournalEntry 创建测试交易日志
func TestJournalEntry(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.TradeJournal)) *model.TradeJournal {
	t.Helper()

	entry := &model.TradeJournal{
		UserID:     userID,
		Ticker:     "AAPL",
		Strategy:   "Long Call",
		OptionType: "call",
		Strike:     230,
		Contracts:  1,
		EntryPrice: 5.40,
		EntryDate:  time.Now().UTC(),
		Status:     "open",
	}

	for _, opt := range opts {
		opt(entry)
	}

	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("Failed to create test journal entry: %v", err)
	}

	return entry
}

// WithJournalTicker 设置日志标的
func WithJournalTicker(ticker string) func(*model.TradeJournal) {
	return func(e *model.TradeJournal) {
		e.Ticker = ticker
	}
}

// WithJournalStatus 设置日志状态
func WithJournalStatus(status string) func(*model.TradeJournal) {
	return func(e *model.TradeJournal) {
		e.Status = status
	}
}

// WithJournalEntryDate 设置开仓日期
func WithJournalEntryDate(date time.Time) func(*model.TradeJournal) {
	return func(e *model.TradeJournal) {
		e.EntryDate = date
	}
}

// TestAlert 创建测试价格预警
func TestAlert(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Alert)) *model.Alert {
	t.Helper()

	alert := &model.Alert{
		UserID:    userID,
		Ticker:    "NVDA",
		AlertType: model.AlertPriceAbove,
		Threshold: 180,
		IsActive:  true,
	}

	for _, opt := range opts {
		opt(alert)
	}

	if err := db.Create(alert).Error; err != nil {
		t.Fatalf("Failed to create test alert: %v", err)
	}

	return alert
}

// WithAlertType 设置预警类型和阈值
func WithAlertType(alertType string, threshold float64) func(*model.Alert) {
	return func(a *model.Alert) {
		a.AlertType = alertType
		a.Threshold = threshold
	}
}

// WithAlertInactive 设置预警为已失效
func WithAlertInactive() func(*model.Alert) {
	return func(a *model.Alert) {
		a.IsActive = false
		now := time.Now().UTC()
		a.TriggeredAt = &now
	}
}

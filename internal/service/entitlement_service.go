package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/pkg/billing"
	"github.com/qs3c/options_go_server/internal/pkg/email"
	"github.com/qs3c/options_go_server/internal/pkg/ws"
	"github.com/qs3c/options_go_server/internal/repository"
)

// ErrCorruptUser 用户记录不一致（trial 用户缺少 trial_end），属于数据损坏而非正常拒绝
var ErrCorruptUser = errors.New("用户订阅数据异常，请联系管理员")

// 拒绝原因，直接展示给用户
const (
	ReasonTrialExpired  = "试用已到期，订阅套餐后可继续使用"
	ReasonNotEntitled   = "当前账号无可用套餐，请订阅后使用"
	ReasonQuotaExceeded = "今日分析次数已用完，明天再来或升级套餐"
)

// 试用到期前几天开始发提醒邮件
const trialNoticeWindowDays = 3

type EntitlementService struct {
	userRepo     *repository.UserRepository
	emailService *email.Service
	hub          *ws.Hub
	cfg          *config.Config
}

func NewEntitlementService(userRepo *repository.UserRepository, emailService *email.Service, hub *ws.Hub, cfg *config.Config) *EntitlementService {
	return &EntitlementService{
		userRepo:     userRepo,
		emailService: emailService,
		hub:          hub,
		cfg:          cfg,
	}
}

// EffectivePlan 从时间戳推导当前生效的套餐，纯函数，不修改任何状态。
// 存储的 plan 字段只是缓存，时间戳比较才是事实来源。
func (s *EntitlementService) EffectivePlan(user *model.User, now time.Time) (string, error) {
	plan := model.NormalizePlan(user.Plan)

	switch plan {
	case model.PlanTrial:
		if user.TrialEnd == nil {
			return "", fmt.Errorf("user %d has trial plan but no trial_end: %w", user.ID, ErrCorruptUser)
		}
		if now.After(*user.TrialEnd) {
			return model.PlanExpired, nil
		}
		return model.PlanTrial, nil
	case model.PlanBasic, model.PlanElite:
		if user.SubscriptionEnd != nil && now.After(*user.SubscriptionEnd) {
			return model.PlanExpired, nil
		}
		return plan, nil
	default:
		return model.PlanExpired, nil
	}
}

// ExpireTrialIfNeeded 把推导出的 expired 状态写回存储。
// 写回失败只记日志，判定结果不受影响。
func (s *EntitlementService) ExpireTrialIfNeeded(user *model.User, now time.Time) error {
	effective, err := s.EffectivePlan(user, now)
	if err != nil {
		return err
	}
	if effective == model.PlanExpired && user.Plan != model.PlanExpired {
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"plan": model.PlanExpired}); err != nil {
			log.Printf("Failed to write back expired plan for user %d: %v", user.ID, err)
		} else {
			user.Plan = model.PlanExpired
		}
	}
	return nil
}

// HasAccess 判断用户当前是否有任何可用套餐
func (s *EntitlementService) HasAccess(user *model.User, now time.Time) (bool, error) {
	effective, err := s.EffectivePlan(user, now)
	if err != nil {
		return false, err
	}
	return effective != model.PlanExpired, nil
}

// MeetsMinimum 判断用户套餐是否达到功能要求的最低等级
func (s *EntitlementService) MeetsMinimum(user *model.User, minPlan string, now time.Time) (bool, error) {
	effective, err := s.EffectivePlan(user, now)
	if err != nil {
		return false, err
	}
	if effective == model.PlanExpired {
		return false, nil
	}
	return model.PlanRank(effective) >= model.PlanRank(minPlan), nil
}

// DailyLimit 套餐对应的每日分析次数上限，0 表示不限量
func (s *EntitlementService) DailyLimit(plan string) int {
	level, ok := s.cfg.Subscription.Plans[model.NormalizePlan(plan)]
	if !ok {
		return 0
	}
	return level.DailyQuota
}

// CanRunAnalysis 判断能否执行一次分析。
// 拒绝是正常返回值而不是 error，reason 用于直接展示。
func (s *EntitlementService) CanRunAnalysis(user *model.User, now time.Time) (bool, string, error) {
	effective, err := s.EffectivePlan(user, now)
	if err != nil {
		return false, "", err
	}
	if effective == model.PlanExpired {
		if user.TrialEnd != nil {
			return false, ReasonTrialExpired, nil
		}
		return false, ReasonNotEntitled, nil
	}

	limit := s.DailyLimit(effective)
	if limit <= 0 {
		return true, "", nil
	}

	// 日期翻转后计数视为清零，以 UTC 日界为准
	if sameUTCDay(user.LastAnalysisDate, now) && user.AnalysesToday >= limit {
		return false, ReasonQuotaExceeded, nil
	}
	return true, "", nil
}

// RecordAnalysis 记录一次已放行并成功执行的分析。
// 调用方保证每次成功的分析恰好调用一次。
func (s *EntitlementService) RecordAnalysis(user *model.User, now time.Time) error {
	day := utcDay(now)
	if !sameUTCDay(user.LastAnalysisDate, now) {
		if err := s.userRepo.ResetDailyCount(user.ID, day); err != nil {
			return err
		}
		user.AnalysesToday = 0
		user.LastAnalysisDate = &day
	}
	if err := s.userRepo.IncrementAnalyses(user.ID); err != nil {
		return err
	}
	user.AnalysesToday++
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_analysis_date": day}); err != nil {
		return err
	}
	user.LastAnalysisDate = &day
	return nil
}

// ApplyBillingEvent 支付方事件是订阅状态的唯一外部写入口
func (s *EntitlementService) ApplyBillingEvent(user *model.User, event *billing.Event, now time.Time) error {
	switch event.Type {
	case billing.EventCheckoutCompleted:
		plan := model.NormalizePlan(event.Data.Plan)
		if plan != model.PlanBasic && plan != model.PlanElite {
			return fmt.Errorf("checkout event with unknown plan %q", event.Data.Plan)
		}
		end := now.Add(time.Duration(s.cfg.Billing.PeriodDays) * 24 * time.Hour)
		fields := map[string]interface{}{
			"plan":               plan,
			"subscription_start": now,
			"subscription_end":   end,
		}
		if event.Data.Customer != "" {
			fields["billing_customer_id"] = event.Data.Customer
		}
		if event.Data.Subscription != "" {
			fields["billing_subscription_id"] = event.Data.Subscription
		}
		if err := s.userRepo.UpdateFields(user.ID, fields); err != nil {
			return err
		}
		user.Plan = plan
		user.SubscriptionStart = &now
		user.SubscriptionEnd = &end
		if event.Data.Customer != "" {
			c := event.Data.Customer
			user.BillingCustomerID = &c
		}
		if event.Data.Subscription != "" {
			sub := event.Data.Subscription
			user.BillingSubscriptionID = &sub
		}
		return nil

	case billing.EventInvoicePaid:
		// 续费从当前到期时间顺延，已过期则从现在起算
		base := now
		if user.SubscriptionEnd != nil && user.SubscriptionEnd.After(now) {
			base = *user.SubscriptionEnd
		}
		end := base.Add(time.Duration(s.cfg.Billing.PeriodDays) * 24 * time.Hour)
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"subscription_end": end}); err != nil {
			return err
		}
		user.SubscriptionEnd = &end
		return nil

	case billing.EventSubscriptionCancelled:
		// 取消立即失效，不设宽限期
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
			"plan":             model.PlanExpired,
			"subscription_end": now,
		}); err != nil {
			return err
		}
		user.Plan = model.PlanExpired
		user.SubscriptionEnd = &now
		return nil

	default:
		return fmt.Errorf("unhandled billing event type %q", event.Type)
	}
}

// ResetAllQuotas 每日定时全量清零分析计数
func (s *EntitlementService) ResetAllQuotas(now time.Time) error {
	return s.userRepo.ResetAllDailyCounts(utcDay(now))
}

// SendTrialExpiryNotices 给试用即将到期的用户发提醒，邮件加在线推送，返回邮件发送数量
func (s *EntitlementService) SendTrialExpiryNotices(now time.Time) (int, error) {
	to := now.Add(trialNoticeWindowDays * 24 * time.Hour)
	users, err := s.userRepo.ListTrialEndingBetween(now, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		if user.TrialEnd == nil {
			continue
		}
		daysLeft := int(user.TrialEnd.Sub(now).Hours()/24) + 1
		if s.hub != nil {
			if err := s.hub.NotifyTrialExpiring(user.ID, daysLeft); err != nil {
				log.Printf("Failed to push trial expiry notice to user %d: %v", user.ID, err)
			}
		}
		if s.emailService == nil {
			continue
		}
		if err := s.emailService.SendTrialExpiring(user.Email, user.Username, daysLeft); err != nil {
			log.Printf("Failed to send trial expiry notice to user %d: %v", user.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// utcDay 截断到 UTC 日界
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sameUTCDay 判断记录日期和 now 是否同一个 UTC 日
func sameUTCDay(recorded *time.Time, now time.Time) bool {
	if recorded == nil {
		return false
	}
	return utcDay(*recorded).Equal(utcDay(now))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/billing"
	"github.com/qs3c/options_go_server/internal/pkg/email"
	"github.com/qs3c/options_go_server/internal/repository"
)

var (
	ErrUnknownPlan   = errors.New("未知的套餐类型")
	ErrNoBillingInfo = errors.New("尚未订阅，无法打开账单门户")
)

type BillingService struct {
	client       *billing.Client
	userRepo     *repository.UserRepository
	entitlement  *EntitlementService
	emailService *email.Service
	cfg          *config.Config
}

func NewBillingService(
	client *billing.Client,
	userRepo *repository.UserRepository,
	entitlement *EntitlementService,
	emailService *email.Service,
	cfg *config.Config,
) *BillingService {
	return &BillingService{
		client:       client,
		userRepo:     userRepo,
		entitlement:  entitlement,
		emailService: emailService,
		cfg:          cfg,
	}
}

// CreateCheckout 创建订阅结账会话，返回支付方托管页面 URL。
// 用户没有支付方客户记录时先创建一个。
func (s *BillingService) CreateCheckout(ctx context.Context, user *model.User, plan string) (*dto.CheckoutResponse, error) {
	plan = model.NormalizePlan(plan)
	priceID, ok := s.cfg.Billing.PriceIDs[plan]
	if !ok {
		return nil, ErrUnknownPlan
	}

	customerID := ""
	if user.BillingCustomerID != nil {
		customerID = *user.BillingCustomerID
	} else {
		customer, err := s.client.CreateCustomer(ctx, user.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("creating billing customer: %w", err)
		}
		customerID = customer.ID
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"billing_customer_id": customerID}); err != nil {
			return nil, err
		}
		user.BillingCustomerID = &customerID
	}

	session, err := s.client.CreateCheckoutSession(ctx, customerID, priceID, plan, user.ID,
		s.cfg.Billing.SuccessURL, s.cfg.Billing.CancelURL)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}

	return &dto.CheckoutResponse{URL: session.URL}, nil
}

// CreatePortal 创建订阅管理门户会话
func (s *BillingService) CreatePortal(ctx context.Context, user *model.User) (*dto.PortalResponse, error) {
	if user.BillingCustomerID == nil {
		return nil, ErrNoBillingInfo
	}

	session, err := s.client.CreatePortalSession(ctx, *user.BillingCustomerID, s.cfg.Billing.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("creating portal session: %w", err)
	}

	return &dto.PortalResponse{URL: session.URL}, nil
}

// Status 返回用户当前订阅状态
func (s *BillingService) Status(user *model.User, now time.Time) (*dto.BillingStatus, error) {
	effective, err := s.entitlement.EffectivePlan(user, now)
	if err != nil {
		return nil, err
	}

	status := &dto.BillingStatus{
		Plan:       effective,
		HasBilling: user.BillingCustomerID != nil,
	}
	if user.SubscriptionEnd != nil {
		status.SubscriptionEnd = user.SubscriptionEnd.Format(time.RFC3339)
	}
	return status, nil
}

// HandleWebhook 处理已验签的支付方事件：定位用户并应用订阅变更。
// 找不到对应用户或事件类型不认识时为幂等起见直接吞掉，避免支付方无限重试。
func (s *BillingService) HandleWebhook(event *billing.Event, now time.Time) error {
	switch event.Type {
	case billing.EventCheckoutCompleted, billing.EventInvoicePaid, billing.EventSubscriptionCancelled:
	default:
		log.Printf("Billing webhook: ignoring event type %s", event.Type)
		return nil
	}

	user, err := s.resolveUser(event)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Billing webhook %s: no matching user (customer=%s, user_id=%d)",
				event.Type, event.Data.Customer, event.Data.UserID)
			return nil
		}
		return err
	}

	if err := s.entitlement.ApplyBillingEvent(user, event, now); err != nil {
		return err
	}

	if event.Type == billing.EventCheckoutCompleted && s.emailService != nil {
		if err := s.emailService.SendSubscriptionConfirmed(user.Email, user.Username, user.Plan); err != nil {
			log.Printf("Failed to send subscription confirmation to user %d: %v", user.ID, err)
		}
	}
	return nil
}

// resolveUser 优先按事件里的 user_id 定位，回退到支付方客户 ID
func (s *BillingService) resolveUser(event *billing.Event) (*model.User, error) {
	if event.Data.UserID > 0 {
		return s.userRepo.GetByID(event.Data.UserID)
	}
	if event.Data.Customer != "" {
		return s.userRepo.GetByBillingCustomerID(event.Data.Customer)
	}
	return nil, gorm.ErrRecordNotFound
}

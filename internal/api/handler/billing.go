package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/api/middleware"
	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/billing"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/service"
)

// SignatureHeader 支付方 webhook 携带签名的请求头
const SignatureHeader = "X-Billing-Signature"

type BillingHandler struct {
	billingService *service.BillingService
	userRepo       *repository.UserRepository
	cfg            *config.Config
}

func NewBillingHandler(billingService *service.BillingService, userRepo *repository.UserRepository, cfg *config.Config) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		userRepo:       userRepo,
		cfg:            cfg,
	}
}

// Checkout 创建支付会话
// POST /api/v1/billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.billingService.CreateCheckout(c.Request.Context(), user, req.Plan)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlan) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "创建支付会话失败")
		return
	}

	response.Success(c, resp)
}

// Portal 打开订阅管理门户
// POST /api/v1/billing/portal
func (h *BillingHandler) Portal(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	resp, err := h.billingService.CreatePortal(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrNoBillingInfo) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "打开账单门户失败")
		return
	}

	response.Success(c, resp)
}

// Status 当前订阅状态
// GET /api/v1/billing/status
func (h *BillingHandler) Status(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	status, err := h.billingService.Status(user, time.Now().UTC())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, status)
}

// Webhook 支付方异步事件。与前端接口不同，这里按支付方的约定
// 用 HTTP 状态码应答：非 2xx 会触发对方重试。
// POST /api/v1/billing/webhook
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	now := time.Now().UTC()
	sig := c.GetHeader(SignatureHeader)
	if err := billing.VerifySignature(payload, sig, h.cfg.Billing.WebhookSecret, now); err != nil {
		log.Printf("Webhook signature rejected: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	event, err := billing.ParseEvent(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	if err := h.billingService.HandleWebhook(event, now); err != nil {
		log.Printf("Webhook %s (%s) failed: %v", event.ID, event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *BillingHandler) currentUser(c *gin.Context) (*model.User, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return nil, false
	}

	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		response.AuthError(c, "用户不存在")
		return nil, false
	}
	return u, true
}

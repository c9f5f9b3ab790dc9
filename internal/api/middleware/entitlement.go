package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/service"
)

const CurrentUserKey = "currentUser"

// AnalysisGate 分析接口的订阅门禁：套餐有效且当日配额未用完才放行。
// 放行后把用户记录挂到上下文，处理器成功后自行调用 RecordAnalysis 计数。
func AnalysisGate(userRepo *repository.UserRepository, entitlement *service.EntitlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadUser(c, userRepo)
		if !ok {
			return
		}
		now := time.Now().UTC()

		if err := entitlement.ExpireTrialIfNeeded(user, now); err != nil {
			abortEntitlementError(c, err)
			return
		}

		allowed, reason, err := entitlement.CanRunAnalysis(user, now)
		if err != nil {
			abortEntitlementError(c, err)
			return
		}
		if !allowed {
			if reason == service.ReasonQuotaExceeded {
				response.QuotaError(c, reason)
			} else {
				response.PlanError(c, reason)
			}
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// RequirePlan 套餐等级门禁，用于订阅档位限定的功能
func RequirePlan(minPlan string, userRepo *repository.UserRepository, entitlement *service.EntitlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadUser(c, userRepo)
		if !ok {
			return
		}
		now := time.Now().UTC()

		if err := entitlement.ExpireTrialIfNeeded(user, now); err != nil {
			abortEntitlementError(c, err)
			return
		}

		meets, err := entitlement.MeetsMinimum(user, minPlan, now)
		if err != nil {
			abortEntitlementError(c, err)
			return
		}
		if !meets {
			response.PlanError(c, "该功能需要更高档位的套餐")
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// GetCurrentUser 取门禁中间件挂到上下文的用户记录
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

func loadUser(c *gin.Context, userRepo *repository.UserRepository) (*model.User, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		c.Abort()
		return nil, false
	}

	user, err := userRepo.GetByID(userID)
	if err != nil {
		response.AuthError(c, "用户不存在")
		c.Abort()
		return nil, false
	}
	return user, true
}

func abortEntitlementError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrCorruptUser) {
		response.ServerError(c, service.ErrCorruptUser.Error())
	} else {
		response.ServerError(c, "订阅状态检查失败")
	}
	c.Abort()
}

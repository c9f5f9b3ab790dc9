package handler

import (
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/internal/api/middleware"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/pricing"
	"github.com/qs3c/options_go_server/internal/service"
)

type OptionHandler struct {
	optionService *service.OptionService
	entitlement   *service.EntitlementService
}

func NewOptionHandler(optionService *service.OptionService, entitlement *service.EntitlementService) *OptionHandler {
	return &OptionHandler{
		optionService: optionService,
		entitlement:   entitlement,
	}
}

// Autofill 标的自动填充：现价 + 到期日列表
// POST /api/v1/options/autofill
func (h *OptionHandler) Autofill(c *gin.Context) {
	var req dto.AutofillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.optionService.Autofill(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoTicker) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Strikes 指定到期日的行权价列表
// POST /api/v1/options/strikes
func (h *OptionHandler) Strikes(c *gin.Context) {
	var req dto.StrikesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.optionService.Strikes(c.Request.Context(), &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Contract 单个合约的实时行情
// POST /api/v1/options/contract
func (h *OptionHandler) Contract(c *gin.Context) {
	var req dto.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.optionService.Contract(c.Request.Context(), &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Greeks 定价分析：希腊值 + 盈亏曲线
// POST /api/v1/options/greeks
func (h *OptionHandler) Greeks(c *gin.Context) {
	var req dto.GreeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	now := time.Now().UTC()
	resp, err := h.optionService.Greeks(c.Request.Context(), &req, now)
	if err != nil {
		if errors.Is(err, pricing.ErrUndefined) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	h.recordUsage(c, now)
	response.Success(c, resp)
}

// Simulate 多持有期情景模拟
// POST /api/v1/options/simulate
func (h *OptionHandler) Simulate(c *gin.Context) {
	var req dto.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.optionService.Simulate(&req)
	if err != nil {
		if errors.Is(err, pricing.ErrUndefined) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	h.recordUsage(c, time.Now().UTC())
	response.Success(c, resp)
}

// recordUsage 分析成功后记一次当日用量。计数失败不影响已算出的结果。
func (h *OptionHandler) recordUsage(c *gin.Context, now time.Time) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return
	}
	if err := h.entitlement.RecordAnalysis(user, now); err != nil {
		log.Printf("Failed to record analysis for user %d: %v", user.ID, err)
	}
}

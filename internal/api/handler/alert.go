package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/internal/api/middleware"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/service"
)

type AlertHandler struct {
	alertService *service.AlertService
}

func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// Create 创建价格预警
// POST /api/v1/alerts
func (h *AlertHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	alert, err := h.alertService.Create(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrTooManyAlerts) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", alert)
}

// List 当前用户的预警列表
// GET /api/v1/alerts
func (h *AlertHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	alerts, err := h.alertService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, alerts)
}

// Delete 删除预警
// DELETE /api/v1/alerts/:id
func (h *AlertHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	alertID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的预警ID")
		return
	}

	if err := h.alertService.Delete(userID, alertID); err != nil {
		switch {
		case errors.Is(err, service.ErrAlertNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotOwner):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

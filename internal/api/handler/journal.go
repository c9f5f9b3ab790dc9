package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/internal/api/middleware"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/service"
)

type JournalHandler struct {
	journalService *service.JournalService
}

func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

// Create 新建交易日志
// POST /api/v1/journal
func (h *JournalHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	entry, err := h.journalService.Create(userID, &req, time.Now().UTC())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", entry)
}

// List 交易日志列表，支持按状态和标的过滤
// GET /api/v1/journal
func (h *JournalHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")
	ticker := c.Query("ticker")

	items, total, err := h.journalService.List(userID, page, pageSize, status, ticker)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 交易日志详情
// GET /api/v1/journal/:id
func (h *JournalHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的日志ID")
		return
	}

	entry, err := h.journalService.Get(userID, entryID)
	if err != nil {
		h.journalError(c, err)
		return
	}

	response.Success(c, entry)
}

// Update 更新交易日志（平仓、补充笔记等）
// PUT /api/v1/journal/:id
func (h *JournalHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的日志ID")
		return
	}

	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	entry, err := h.journalService.Update(userID, entryID, &req, time.Now().UTC())
	if err != nil {
		h.journalError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", entry)
}

// Delete 删除交易日志
// DELETE /api/v1/journal/:id
func (h *JournalHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的日志ID")
		return
	}

	if err := h.journalService.Delete(userID, entryID); err != nil {
		h.journalError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

func (h *JournalHandler) journalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJournalNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		response.PermissionError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}

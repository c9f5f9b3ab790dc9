package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/service"
)

type ScannerHandler struct {
	scannerService *service.ScannerService
}

func NewScannerHandler(scannerService *service.ScannerService) *ScannerHandler {
	return &ScannerHandler{
		scannerService: scannerService,
	}
}

// Daily 当日 AI 扫描结果，同一 UTC 日内全站共享缓存
// GET /api/v1/scanner/daily
func (h *ScannerHandler) Daily(c *gin.Context) {
	resp, err := h.scannerService.DailyScan(c.Request.Context(), time.Now().UTC())
	if err != nil {
		response.ServerError(c, service.ErrScanFailed.Error())
		return
	}

	response.Success(c, resp)
}

// Theme 按主题即时扫描，不读写每日缓存
// POST /api/v1/scanner/theme
func (h *ScannerHandler) Theme(c *gin.Context) {
	var req dto.ThemeScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.scannerService.ThemeScan(c.Request.Context(), req.Theme, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyTheme):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrThemeTooLong):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, service.ErrScanFailed.Error())
		}
		return
	}

	response.Success(c, resp)
}

// Refresh 强制重跑当日扫描并覆盖缓存
// POST /api/v1/scanner/refresh
func (h *ScannerHandler) Refresh(c *gin.Context) {
	resp, err := h.scannerService.RefreshScan(c.Request.Context(), time.Now().UTC())
	if err != nil {
		response.ServerError(c, service.ErrScanFailed.Error())
		return
	}

	response.Success(c, resp)
}

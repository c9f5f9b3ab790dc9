package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/oauth"
	"github.com/qs3c/options_go_server/internal/pkg/response"
	"github.com/qs3c/options_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	stateStore  *oauth.StateStore
}

func NewAuthHandler(authService *service.AuthService, stateStore *oauth.StateStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stateStore:  stateStore,
	}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUsernameExists):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "注册成功", resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// GithubAuth 跳转到 GitHub 授权页面
// GET /api/v1/auth/github?redirect_uri=xxx
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	redirectURI := c.Query("redirect_uri")

	state, err := h.stateStore.GenerateState(c.Request.Context(), redirectURI)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.authService.GetGithubAuthURL(state))
}

// GithubCallback GitHub 授权回调
// GET /api/v1/auth/github/callback?code=xxx&state=xxx
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	state := c.Query("state")
	redirectURI, err := h.stateStore.ValidateState(c.Request.Context(), state)
	if err != nil {
		response.ParamError(c, "state 校验失败，请重新登录")
		return
	}

	resp, err := h.authService.GithubCallback(c.Request.Context(), code, time.Now().UTC())
	if err != nil {
		response.ServerError(c, "GitHub 登录失败")
		return
	}

	// 带前端回跳地址时把 token 挂到查询串上跳回去
	if redirectURI != "" {
		c.Redirect(http.StatusTemporaryRedirect, redirectURI+"?token="+url.QueryEscape(resp.Token))
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/api/handler"
	"github.com/qs3c/options_go_server/internal/api/middleware"
	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/service"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	optionHandler    *handler.OptionHandler
	billingHandler   *handler.BillingHandler
	scannerHandler   *handler.ScannerHandler
	journalHandler   *handler.JournalHandler
	alertHandler     *handler.AlertHandler
	websocketHandler *handler.WebSocketHandler
	userRepo         *repository.UserRepository
	entitlement      *service.EntitlementService
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	optionHandler *handler.OptionHandler,
	billingHandler *handler.BillingHandler,
	scannerHandler *handler.ScannerHandler,
	journalHandler *handler.JournalHandler,
	alertHandler *handler.AlertHandler,
	websocketHandler *handler.WebSocketHandler,
	userRepo *repository.UserRepository,
	entitlement *service.EntitlementService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		optionHandler:    optionHandler,
		billingHandler:   billingHandler,
		scannerHandler:   scannerHandler,
		journalHandler:   journalHandler,
		alertHandler:     alertHandler,
		websocketHandler: websocketHandler,
		userRepo:         userRepo,
		entitlement:      entitlement,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 公开接口 - 支付方回调（签名校验，不走 JWT）
		api.POST("/billing/webhook", r.billingHandler.Webhook)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.GET("/usage", r.userHandler.GetUsage)
			}

			// 账单
			billing := authenticated.Group("/billing")
			{
				billing.POST("/checkout", r.billingHandler.Checkout)
				billing.POST("/portal", r.billingHandler.Portal)
				billing.GET("/status", r.billingHandler.Status)
			}

			// 期权分析。行情查询只要求登录，
			// 定价和模拟要求套餐有效且当日配额未用完。
			options := authenticated.Group("/options")
			{
				options.POST("/strikes", r.optionHandler.Strikes)
				options.POST("/contract", r.optionHandler.Contract)

				options.POST("/autofill",
					middleware.RequirePlan(model.PlanTrial, r.userRepo, r.entitlement),
					r.optionHandler.Autofill)

				gated := options.Group("")
				gated.Use(middleware.AnalysisGate(r.userRepo, r.entitlement))
				{
					gated.POST("/greeks", r.optionHandler.Greeks)
					gated.POST("/simulate", r.optionHandler.Simulate)
				}
			}

			// AI 扫描，套餐档位限定
			scanner := authenticated.Group("/scanner")
			scanner.Use(middleware.RequirePlan(r.cfg.Scanner.MinPlan, r.userRepo, r.entitlement))
			{
				scanner.GET("/daily", r.scannerHandler.Daily)
				scanner.POST("/theme", r.scannerHandler.Theme)
				scanner.POST("/refresh", r.scannerHandler.Refresh)
			}

			// 交易日志
			journal := authenticated.Group("/journal")
			{
				journal.POST("", r.journalHandler.Create)
				journal.GET("", r.journalHandler.List)
				journal.GET("/:id", r.journalHandler.Get)
				journal.PUT("/:id", r.journalHandler.Update)
				journal.DELETE("/:id", r.journalHandler.Delete)
			}

			// 价格预警
			alerts := authenticated.Group("/alerts")
			{
				alerts.POST("", r.alertHandler.Create)
				alerts.GET("", r.alertHandler.List)
				alerts.DELETE("/:id", r.alertHandler.Delete)
			}
		}
	}

	return engine
}

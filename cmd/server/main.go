package main

import (
	"fmt"
	"log"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/api"
	"github.com/qs3c/options_go_server/internal/api/handler"
	"github.com/qs3c/options_go_server/internal/database"
	"github.com/qs3c/options_go_server/internal/pkg/ai"
	"github.com/qs3c/options_go_server/internal/pkg/billing"
	"github.com/qs3c/options_go_server/internal/pkg/cron"
	"github.com/qs3c/options_go_server/internal/pkg/email"
	"github.com/qs3c/options_go_server/internal/pkg/marketdata"
	"github.com/qs3c/options_go_server/internal/pkg/oauth"
	"github.com/qs3c/options_go_server/internal/pkg/ws"
	"github.com/qs3c/options_go_server/internal/repository"
	"github.com/qs3c/options_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub initialized")

	// 外部客户端
	marketClient := marketdata.NewClient(&cfg.MarketData)
	billingClient := billing.NewClient(&cfg.Billing)
	aiClient := ai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens)
	emailService := email.NewService(&cfg.Email)
	stateStore := oauth.NewStateStore(rdb)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// 初始化 Service
	entitlementService := service.NewEntitlementService(userRepo, emailService, wsHub, cfg)
	authService := service.NewAuthService(userRepo, entitlementService, emailService, cfg)
	userService := service.NewUserService(userRepo, authService, entitlementService)
	optionService := service.NewOptionService(marketClient, cfg)
	scannerService := service.NewScannerService(aiClient, marketClient, rdb, cfg)
	billingService := service.NewBillingService(billingClient, userRepo, entitlementService, emailService, cfg)
	journalService := service.NewJournalService(journalRepo)
	alertService := service.NewAlertService(alertRepo, marketClient, wsHub)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	optionHandler := handler.NewOptionHandler(optionService, entitlementService)
	billingHandler := handler.NewBillingHandler(billingService, userRepo, cfg)
	scannerHandler := handler.NewScannerHandler(scannerService)
	journalHandler := handler.NewJournalHandler(journalService)
	alertHandler := handler.NewAlertHandler(alertService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS)

	// 启动定时任务：配额清零、试用到期提醒、价格预警评估
	cronService := cron.NewService(entitlementService, alertService, 0)
	cronService.Start()
	defer cronService.Stop()
	log.Println("Cron service started")

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		optionHandler,
		billingHandler,
		scannerHandler,
		journalHandler,
		alertHandler,
		websocketHandler,
		userRepo,
		entitlementService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

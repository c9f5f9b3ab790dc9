package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/database"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/ai"
	"github.com/qs3c/options_go_server/internal/pkg/marketdata"
	"github.com/qs3c/options_go_server/internal/service"
)

var (
	theme   = flag.String("theme", "", "Run a themed scan instead of the daily one")
	refresh = flag.Bool("refresh", false, "Force rerun the daily scan and overwrite the cache")
	timeout = flag.Int("timeout", 120, "Scan timeout in seconds")
)

// 手动触发一次 AI 扫描并把结果打到标准输出。
// 定时任务挂掉或需要盘前预热缓存时用。
func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}

	aiClient := ai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens)
	marketClient := marketdata.NewClient(&cfg.MarketData)
	scanner := service.NewScannerService(aiClient, marketClient, rdb, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	now := time.Now().UTC()
	start := time.Now()

	var result *dto.ScanResponse
	switch {
	case *theme != "":
		log.Printf("Running themed scan: %q", *theme)
		result, err = scanner.ThemeScan(ctx, *theme, now)
	case *refresh:
		log.Println("Refreshing daily scan")
		result, err = scanner.RefreshScan(ctx, now)
	default:
		log.Println("Running daily scan")
		result, err = scanner.DailyScan(ctx, now)
	}
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	if result.Cached {
		log.Println("Served from cache")
	}
	for _, s := range result.Stocks {
		fmt.Printf("%-6s %2d/10  %s\n", s.Ticker, s.Score, s.Theme)
	}
	log.Printf("Scan finished: %d picks in %s", len(result.Stocks), time.Since(start).Round(time.Millisecond))
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/ai"
	"github.com/qs3c/options_go_server/internal/pkg/marketdata"
)

var (
	ErrEmptyTheme   = errors.New("请输入要搜索的主题")
	ErrThemeTooLong = errors.New("主题太长，请控制在 100 字以内")
	ErrScanFailed   = errors.New("AI 扫描失败，请稍后重试")
)

const (
	scanCacheKeyPrefix = "scan:daily:"
	scanCacheTTL       = 26 * time.Hour
)

// Completer 模型调用入口，测试时可替换为桩实现
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ScannerService AI 选股扫描。
// 每日扫描结果按 UTC 日期缓存在 Redis，主题扫描不缓存。
type ScannerService struct {
	aiClient Completer
	market   *marketdata.Client
	rdb      *redis.Client
	cfg      *config.Config

	// 同一天的并发首次扫描只放行一个
	scanMu sync.Mutex
}

func NewScannerService(aiClient Completer, market *marketdata.Client, rdb *redis.Client, cfg *config.Config) *ScannerService {
	return &ScannerService{
		aiClient: aiClient,
		market:   market,
		rdb:      rdb,
		cfg:      cfg,
	}
}

// DailyScan 返回今日选股结果，当天第一次调用触发真实扫描，之后命中缓存
func (s *ScannerService) DailyScan(ctx context.Context, now time.Time) (*dto.ScanResponse, error) {
	today := now.UTC().Format("2006-01-02")

	if cached := s.readCache(ctx, today); cached != nil {
		return &dto.ScanResponse{
			Stocks:  cached,
			Cached:  true,
			Date:    today,
			Message: "Daily scan results",
		}, nil
	}

	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	// 等锁期间可能已有人写入
	if cached := s.readCache(ctx, today); cached != nil {
		return &dto.ScanResponse{
			Stocks:  cached,
			Cached:  true,
			Date:    today,
			Message: "Daily scan results",
		}, nil
	}

	stocks, err := s.runScan(ctx, "", now)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, today, stocks)

	return &dto.ScanResponse{
		Stocks:  stocks,
		Cached:  false,
		Date:    today,
		Message: "Fresh daily scan complete",
	}, nil
}

// ThemeScan 按给定主题扫描，不走缓存
func (s *ScannerService) ThemeScan(ctx context.Context, theme string, now time.Time) (*dto.ScanResponse, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, ErrEmptyTheme
	}
	maxLen := s.cfg.Scanner.MaxThemeLength
	if maxLen <= 0 {
		maxLen = 100
	}
	if len([]rune(theme)) > maxLen {
		return nil, ErrThemeTooLong
	}

	stocks, err := s.runScan(ctx, theme, now)
	if err != nil {
		return nil, err
	}

	return &dto.ScanResponse{
		Stocks:  stocks,
		Date:    now.UTC().Format("2006-01-02"),
		Theme:   theme,
		Message: fmt.Sprintf("Top stocks for theme: %s", theme),
	}, nil
}

// RefreshScan 强制重跑今日扫描并覆盖缓存
func (s *ScannerService) RefreshScan(ctx context.Context, now time.Time) (*dto.ScanResponse, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	stocks, err := s.runScan(ctx, "", now)
	if err != nil {
		return nil, err
	}

	today := now.UTC().Format("2006-01-02")
	s.writeCache(ctx, today, stocks)

	return &dto.ScanResponse{
		Stocks:  stocks,
		Cached:  false,
		Date:    today,
		Message: "Scan refreshed",
	}, nil
}

// runScan 拉取行情快照、构造提示词、调用模型并解析结果
func (s *ScannerService) runScan(ctx context.Context, theme string, now time.Time) ([]dto.StockPick, error) {
	market := s.marketContext(ctx)
	prompt := s.buildPrompt(theme, market, now)

	text, err := s.aiClient.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Scanner: AI call failed: %v", err)
		return nil, ErrScanFailed
	}

	var stocks []dto.StockPick
	if err := json.Unmarshal([]byte(ai.ExtractJSON(text)), &stocks); err != nil {
		log.Printf("Scanner: failed to parse AI response: %v", err)
		return nil, ErrScanFailed
	}

	// 能拿到行情的股票附上现价
	for i := range stocks {
		if snap, ok := market[stocks[i].Ticker]; ok {
			stocks[i].CurrentPrice = snap.Price
			stocks[i].ChangePct = snap.ChangePct
		}
	}

	return stocks, nil
}

type marketSnapshot struct {
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// marketContext 拉取一组核心标的的现价作为提示词上下文，失败的标的直接跳过
func (s *ScannerService) marketContext(ctx context.Context) map[string]marketSnapshot {
	snapshots := make(map[string]marketSnapshot)
	for _, ticker := range s.cfg.Scanner.ContextTickers {
		quote, err := s.market.GetQuote(ctx, ticker)
		if err != nil {
			continue
		}
		snapshots[ticker] = marketSnapshot{
			Price:     round2(quote.Price),
			ChangePct: round2(quote.ChangePct()),
		}
	}
	return snapshots
}

func (s *ScannerService) buildPrompt(theme string, market map[string]marketSnapshot, now time.Time) string {
	today := now.UTC().Format("January 2, 2006")
	snapshot, _ := json.MarshalIndent(market, "", "  ")

	if theme != "" {
		return fmt.Sprintf(`You are an expert stock analyst and financial researcher. Today is %s.

A trader is asking about stocks related to this theme: "%s"

Current market snapshot:
%s

Your job:
1. Analyze the "%s" theme and find the TOP 5 stocks most likely to benefit
2. For each stock, explain WHY it will benefit from this theme
3. Rate each stock's opportunity score from 0-100
4. Consider both direct plays (1st derivative) and indirect plays (2nd derivative)

Respond ONLY with a JSON array, no other text:
[
  {
    "ticker": "NVDA",
    "company": "NVIDIA Corporation",
    "score": 92,
    "theme": "AI Chips",
    "why": "Direct beneficiary of AI boom - makes the GPUs that power all AI training",
    "catalyst": "Data center revenue up 400%% YoY, new Blackwell chip demand exceeding supply",
    "risk": "High valuation, China export restrictions",
    "timeframe": "3-6 months",
    "type": "1st Derivative"
  }
]`, today, theme, snapshot, theme)
	}

	return fmt.Sprintf(`You are an expert stock analyst and financial researcher. Today is %s.

Your job is to scan the market and find the TOP 5 stock opportunities RIGHT NOW based on:
- Current macro trends (AI, energy, geopolitics, interest rates)
- Sector momentum
- Recent catalysts
- Undervalued opportunities

Current market snapshot:
%s

Find stocks that are "about to move" because of what's happening in the world RIGHT NOW.
Think about: AI infrastructure, energy transition, defense, biotech breakthroughs, reshoring/manufacturing.

Respond ONLY with a JSON array, no other text:
[
  {
    "ticker": "NVDA",
    "company": "NVIDIA Corporation",
    "score": 92,
    "theme": "AI Infrastructure",
    "why": "Direct beneficiary of AI boom - makes the GPUs that power all AI training",
    "catalyst": "Data center revenue up 400%% YoY, new Blackwell chip demand exceeding supply",
    "risk": "High valuation, China export restrictions",
    "timeframe": "3-6 months",
    "type": "1st Derivative"
  }
]`, today, snapshot)
}

func (s *ScannerService) readCache(ctx context.Context, day string) []dto.StockPick {
	if s.rdb == nil {
		return nil
	}

	raw, err := s.rdb.Get(ctx, scanCacheKeyPrefix+day).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Scanner: cache read failed: %v", err)
		}
		return nil
	}

	var stocks []dto.StockPick
	if err := json.Unmarshal(raw, &stocks); err != nil {
		log.Printf("Scanner: corrupt cache entry for %s: %v", day, err)
		return nil
	}
	return stocks
}

func (s *ScannerService) writeCache(ctx context.Context, day string, stocks []dto.StockPick) {
	if s.rdb == nil {
		return
	}

	raw, err := json.Marshal(stocks)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, scanCacheKeyPrefix+day, raw, scanCacheTTL).Err(); err != nil {
		log.Printf("Scanner: cache write failed: %v", err)
	}
}

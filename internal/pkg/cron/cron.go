package cron

import (
	"context"
	"log"
	"time"

	"github.com/qs3c/options_go_server/internal/service"
)

type Service struct {
	entitlementService *service.EntitlementService
	alertService       *service.AlertService
	alertInterval      time.Duration
	stopChan           chan struct{}
}

func NewService(
	entitlementService *service.EntitlementService,
	alertService *service.AlertService,
	alertInterval time.Duration,
) *Service {
	if alertInterval <= 0 {
		alertInterval = 5 * time.Minute
	}
	return &Service{
		entitlementService: entitlementService,
		alertService:       alertService,
		alertInterval:      alertInterval,
		stopChan:           make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyTasks()
	go s.runAlertEvaluation()
	log.Println("Cron service started (daily reset + alert evaluation)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyTasks 每日 UTC 零点任务：配额重置 + 试用到期提醒
func (s *Service) runDailyTasks() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.runDailyOnce()
			timer.Reset(24 * time.Hour)
		}
	}
}

func (s *Service) runDailyOnce() {
	now := time.Now().UTC()

	log.Println("Starting daily quota reset...")
	if err := s.entitlementService.ResetAllQuotas(now); err != nil {
		log.Printf("Failed to reset daily quotas: %v", err)
	} else {
		log.Println("Daily quota reset completed")
	}

	sent, err := s.entitlementService.SendTrialExpiryNotices(now)
	if err != nil {
		log.Printf("Failed to send trial expiry notices: %v", err)
	} else if sent > 0 {
		log.Printf("Trial expiry notices sent: %d", sent)
	}
}

// runAlertEvaluation 定期检查价格提醒
func (s *Service) runAlertEvaluation() {
	ticker := time.NewTicker(s.alertInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.alertInterval)
			triggered, err := s.alertService.EvaluateAll(ctx)
			cancel()
			if err != nil {
				log.Printf("Alert evaluation failed: %v", err)
			} else if triggered > 0 {
				log.Printf("Alerts triggered: %d", triggered)
			}
		}
	}
}

// RunNow 立即执行每日任务（用于测试或手动触发）
func (s *Service) RunNow() {
	s.runDailyOnce()
}

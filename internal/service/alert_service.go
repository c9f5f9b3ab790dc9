package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/marketdata"
	"github.com/qs3c/options_go_server/internal/pkg/ws"
	"github.com/qs3c/options_go_server/internal/repository"
)

var ErrAlertNotFound = errors.New("价格预警不存在")

// 单用户最多同时挂的预警数
const maxAlertsPerUser = 20

var ErrTooManyAlerts = errors.New("预警数量已达上限")

type AlertService struct {
	alertRepo *repository.AlertRepository
	market    *marketdata.Client
	hub       *ws.Hub
}

func NewAlertService(alertRepo *repository.AlertRepository, market *marketdata.Client, hub *ws.Hub) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		market:    market,
		hub:       hub,
	}
}

// Create 创建价格预警
func (s *AlertService) Create(userID int64, req *dto.CreateAlertRequest) (*model.Alert, error) {
	existing, err := s.alertRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxAlertsPerUser {
		return nil, ErrTooManyAlerts
	}

	alert := &model.Alert{
		UserID:    userID,
		Ticker:    normalizeTicker(req.Ticker),
		AlertType: req.AlertType,
		Threshold: req.Threshold,
		Message:   req.Message,
		IsActive:  true,
	}
	if err := s.alertRepo.Create(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// List 查询用户的全部预警
func (s *AlertService) List(userID int64) ([]model.Alert, error) {
	return s.alertRepo.ListByUser(userID)
}

// Delete 删除预警，校验归属
func (s *AlertService) Delete(userID, alertID int64) error {
	alert, err := s.alertRepo.GetByID(alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	if alert.UserID != userID {
		return ErrNotOwner
	}
	return s.alertRepo.Delete(alertID)
}

// EvaluateAll 检查所有活跃预警，命中的标记触发并推送给用户。
// 行情取不到的标的跳过，下个周期再试。返回触发数量。
func (s *AlertService) EvaluateAll(ctx context.Context) (int, error) {
	alerts, err := s.alertRepo.ListActive()
	if err != nil {
		return 0, err
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	// 同一标的只查一次行情
	prices := make(map[string]float64)
	triggered := 0
	now := time.Now().UTC()

	for _, alert := range alerts {
		price, ok := prices[alert.Ticker]
		if !ok {
			quote, err := s.market.GetQuote(ctx, alert.Ticker)
			if err != nil {
				log.Printf("Alert evaluation: quote unavailable for %s: %v", alert.Ticker, err)
				prices[alert.Ticker] = -1
				continue
			}
			price = quote.Price
			prices[alert.Ticker] = price
		}
		if price <= 0 {
			continue
		}

		if !alertHit(&alert, price) {
			continue
		}

		if err := s.alertRepo.MarkTriggered(alert.ID, now); err != nil {
			log.Printf("Alert evaluation: failed to mark alert %d: %v", alert.ID, err)
			continue
		}
		triggered++

		if s.hub != nil {
			if err := s.hub.NotifyAlertTriggered(alert.UserID, &ws.AlertTriggeredData{
				AlertID:   alert.ID,
				Ticker:    alert.Ticker,
				Condition: alert.AlertType,
				Target:    alert.Threshold,
				Price:     price,
			}); err != nil {
				log.Printf("Alert evaluation: push failed for user %d: %v", alert.UserID, err)
			}
		}
	}

	return triggered, nil
}

func alertHit(alert *model.Alert, price float64) bool {
	switch alert.AlertType {
	case model.AlertPriceAbove:
		return price >= alert.Threshold
	case model.AlertPriceBelow:
		return price <= alert.Threshold
	default:
		return false
	}
}

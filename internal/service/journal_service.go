package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/repository"
)

var (
	ErrJournalNotFound = errors.New("交易日志不存在")
	ErrNotOwner        = errors.New("无权操作该记录")
)

type JournalService struct {
	journalRepo *repository.JournalRepository
}

func NewJournalService(journalRepo *repository.JournalRepository) *JournalService {
	return &JournalService{journalRepo: journalRepo}
}

// Create 创建交易日志
func (s *JournalService) Create(userID int64, req *dto.CreateJournalRequest, now time.Time) (*model.TradeJournal, error) {
	entry := &model.TradeJournal{
		UserID:     userID,
		Ticker:     normalizeTicker(req.Ticker),
		Strategy:   req.Strategy,
		OptionType: req.OptionType,
		Strike:     req.Strike,
		Contracts:  req.Contracts,
		EntryPrice: req.EntryPrice,
		EntryDate:  now,
		Thesis:     req.Thesis,
		Notes:      req.Notes,
		Tags:       req.Tags,
		Status:     "open",
	}
	if entry.Contracts <= 0 {
		entry.Contracts = 1
	}
	if req.Expiration != "" {
		if exp, err := time.Parse("2006-01-02", req.Expiration); err == nil {
			entry.Expiration = &exp
		}
	}

	if err := s.journalRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List 分页查询用户的交易日志，可按状态和标的过滤
func (s *JournalService) List(userID int64, page, pageSize int, status, ticker string) ([]model.TradeJournal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.journalRepo.ListByUser(userID, page, pageSize, status, ticker)
}

// Get 查询单条日志，校验归属
func (s *JournalService) Get(userID, entryID int64) (*model.TradeJournal, error) {
	entry, err := s.journalRepo.GetByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrNotOwner
	}
	return entry, nil
}

// Update 更新日志，平仓时自动补上平仓时间并计算已实现盈亏
func (s *JournalService) Update(userID, entryID int64, req *dto.UpdateJournalRequest, now time.Time) (*model.TradeJournal, error) {
	entry, err := s.Get(userID, entryID)
	if err != nil {
		return nil, err
	}

	if req.ExitPrice != nil {
		entry.ExitPrice = *req.ExitPrice
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if req.Tags != nil {
		entry.Tags = *req.Tags
	}
	if req.Status != nil {
		entry.Status = *req.Status
		if *req.Status != "open" && entry.ExitDate == nil {
			entry.ExitDate = &now
		}
	}
	if req.RealizedPnL != nil {
		entry.RealizedPnL = *req.RealizedPnL
	} else if entry.Status == "closed" && entry.ExitPrice > 0 {
		// 单张合约 100 股
		entry.RealizedPnL = (entry.ExitPrice - entry.EntryPrice) * 100 * float64(entry.Contracts)
	}

	if err := s.journalRepo.Update(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete 删除日志，校验归属
func (s *JournalService) Delete(userID, entryID int64) error {
	if _, err := s.Get(userID, entryID); err != nil {
		return err
	}
	return s.journalRepo.Delete(entryID)
}

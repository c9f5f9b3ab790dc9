package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
)

type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Create(entry *model.TradeJournal) error {
	return r.db.Create(entry).Error
}

func (r *JournalRepository) GetByID(id int64) (*model.TradeJournal, error) {
	var entry model.TradeJournal
	err := r.db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUser 按用户分页查询，可按状态/标的过滤
func (r *JournalRepository) ListByUser(userID int64, page, pageSize int, status, ticker string) ([]model.TradeJournal, int64, error) {
	query := r.db.Model(&model.TradeJournal{}).Where("user_id = ?", userID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if ticker != "" {
		query = query.Where("ticker = ?", ticker)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.TradeJournal
	err := query.Order("entry_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	return entries, total, err
}

func (r *JournalRepository) Update(entry *model.TradeJournal) error {
	return r.db.Save(entry).Error
}

func (r *JournalRepository) Delete(id int64) error {
	return r.db.Delete(&model.TradeJournal{}, id).Error
}

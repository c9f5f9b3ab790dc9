package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(alert *model.Alert) error {
	return r.db.Create(alert).Error
}

func (r *AlertRepository) GetByID(id int64) (*model.Alert, error) {
	var alert model.Alert
	err := r.db.Where("id = ?", id).First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) ListByUser(userID int64) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

// ListActive 查询所有待评估的预警（后台定时任务用）
func (r *AlertRepository) ListActive() ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.db.Where("is_active = ?", true).Find(&alerts).Error
	return alerts, err
}

// MarkTriggered 标记预警已触发并停用
func (r *AlertRepository) MarkTriggered(id int64, at time.Time) error {
	return r.db.Model(&model.Alert{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":    false,
		"triggered_at": at,
	}).Error
}

func (r *AlertRepository) Delete(id int64) error {
	return r.db.Delete(&model.Alert{}, id).Error
}

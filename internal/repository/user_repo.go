package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGithubID(githubID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByBillingCustomerID(customerID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("billing_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementAnalyses 原子递增当日分析计数，并发请求不会丢失
func (r *UserRepository) IncrementAnalyses(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("analyses_today", gorm.Expr("analyses_today + 1")).Error
}

// ResetDailyCount 日期翻转时清零计数并记录新的统计日
func (r *UserRepository) ResetDailyCount(id int64, day time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"analyses_today":     0,
		"last_analysis_date": day,
	}).Error
}

// ResetAllDailyCounts 每日定时全量清零
func (r *UserRepository) ResetAllDailyCounts(day time.Time) error {
	return r.db.Model(&model.User{}).Where("1 = 1").Updates(map[string]interface{}{
		"analyses_today":     0,
		"last_analysis_date": day,
	}).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ListTrialEndingBetween 查询试用期将在给定时间窗内结束的 trial 用户（到期提醒用）
func (r *UserRepository) ListTrialEndingBetween(from, to time.Time) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("plan = ? AND trial_end BETWEEN ? AND ?", model.PlanTrial, from, to).
		Find(&users).Error
	return users, err
}

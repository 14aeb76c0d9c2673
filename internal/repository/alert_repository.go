package repository

import (
	"hse_training_backend/internal/model"

	"gorm.io/gorm"
)

type AlertRepository struct {
	DB *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

func (r *AlertRepository) Create(a *model.Alert) error {
	return r.DB.Create(a).Error
}

func (r *AlertRepository) ListUnread() ([]model.Alert, error) {
	var as []model.Alert
	err := r.DB.Where("is_read = ?", false).Order("created_at desc").Find(&as).Error
	return as, err
}

func (r *AlertRepository) List(page, limit int, unreadOnly bool) ([]model.Alert, int64, error) {
	var as []model.Alert
	var total int64
	query := r.DB.Model(&model.Alert{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AlertRepository) MarkRead(id uint) error {
	return r.DB.Model(&model.Alert{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *AlertRepository) MarkAllRead() error {
	return r.DB.Model(&model.Alert{}).Where("is_read = ?", false).Update("is_read", true).Error
}

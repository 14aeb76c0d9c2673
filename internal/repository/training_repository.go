package repository

import (
	"hse_training_backend/internal/model"

	"gorm.io/gorm"
)

type TrainingRepository struct {
	DB *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{DB: db}
}

func (r *TrainingRepository) CreateModule(m *model.TrainingModule) error {
	return r.DB.Create(m).Error
}

func (r *TrainingRepository) UpdateModule(m *model.TrainingModule) error {
	return r.DB.Save(m).Error
}

func (r *TrainingRepository) FindModuleByID(id uint) (*model.TrainingModule, error) {
	var m model.TrainingModule
	err := r.DB.First(&m, id).Error
	return &m, err
}

func (r *TrainingRepository) FindModuleByCode(code string) (*model.TrainingModule, error) {
	var m model.TrainingModule
	err := r.DB.Where("code = ?", code).First(&m).Error
	return &m, err
}

func (r *TrainingRepository) ListModules(page, limit int) ([]model.TrainingModule, int64, error) {
	var ms []model.TrainingModule
	var total int64
	query := r.DB.Model(&model.TrainingModule{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("code asc").Offset(offset).Limit(limit).Find(&ms).Error
	return ms, total, err
}

func (r *TrainingRepository) ListActiveModules() ([]model.TrainingModule, error) {
	var ms []model.TrainingModule
	err := r.DB.Where("is_active = ?", true).Order("code asc").Find(&ms).Error
	return ms, err
}

func (r *TrainingRepository) CreateContentModule(c *model.ContentModule) error {
	return r.DB.Create(c).Error
}

func (r *TrainingRepository) ListContentModules(moduleID uint) ([]model.ContentModule, error) {
	var cs []model.ContentModule
	err := r.DB.Where("module_id = ?", moduleID).Order("`order` asc").Find(&cs).Error
	return cs, err
}

func (r *TrainingRepository) CountContentModules(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ContentModule{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}

package repository

import (
	"context"

	"hse_training_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// 写方法带 ctx：由持久化适配器在超时上限内调用
func (r *ProgressRepository) Create(ctx context.Context, p *model.TrainingProgress) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *ProgressRepository) Save(ctx context.Context, p *model.TrainingProgress) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *ProgressRepository) FindByEmployeeAndModule(employeeID, moduleID uint) (*model.TrainingProgress, error) {
	var p model.TrainingProgress
	err := r.DB.Where("employee_id = ? AND module_id = ?", employeeID, moduleID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) ListByEmployee(employeeID uint) ([]model.TrainingProgress, error) {
	var ps []model.TrainingProgress
	err := r.DB.Where("employee_id = ?", employeeID).Order("updated_at desc").Find(&ps).Error
	return ps, err
}

func (r *ProgressRepository) ListAll() ([]model.TrainingProgress, error) {
	var ps []model.TrainingProgress
	err := r.DB.Find(&ps).Error
	return ps, err
}

package repository

import (
	"hse_training_backend/internal/model"

	"gorm.io/gorm"
)

type EquipmentRepository struct {
	DB *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{DB: db}
}

func (r *EquipmentRepository) Create(e *model.EquipmentCheck) error {
	return r.DB.Create(e).Error
}

func (r *EquipmentRepository) Update(e *model.EquipmentCheck) error {
	return r.DB.Save(e).Error
}

func (r *EquipmentRepository) FindByID(id uint) (*model.EquipmentCheck, error) {
	var e model.EquipmentCheck
	err := r.DB.First(&e, id).Error
	return &e, err
}

func (r *EquipmentRepository) ListAll() ([]model.EquipmentCheck, error) {
	var es []model.EquipmentCheck
	err := r.DB.Order("last_checked_at asc").Find(&es).Error
	return es, err
}

func (r *EquipmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.EquipmentCheck{}, id).Error
}

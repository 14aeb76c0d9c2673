package service

import (
	"errors"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"

	"gorm.io/gorm"
)

// EquipmentService 安全设备周期检查台账
type EquipmentService struct {
	Repo *repository.EquipmentRepository
}

func NewEquipmentService(repo *repository.EquipmentRepository) *EquipmentService {
	return &EquipmentService{Repo: repo}
}

func (s *EquipmentService) Create(e *model.EquipmentCheck) error {
	return s.Repo.Create(e)
}

func (s *EquipmentService) Get(id uint) (*model.EquipmentCheck, error) {
	e, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEquipmentNotFound
	}
	return e, err
}

func (s *EquipmentService) List() ([]model.EquipmentCheck, error) {
	return s.Repo.ListAll()
}

// RecordCheck 登记一次检查，重置下次到期时间的基准
func (s *EquipmentService) RecordCheck(id uint, checkedBy string) (*model.EquipmentCheck, error) {
	e, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	e.LastCheckedAt = time.Now()
	e.CheckedBy = checkedBy
	if err := s.Repo.Update(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EquipmentService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

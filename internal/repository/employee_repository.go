package repository

import (
	"time"

	"hse_training_backend/internal/model"

	"gorm.io/gorm"
)

type EmployeeRepository struct {
	DB *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) Create(e *model.Employee) error {
	return r.DB.Create(e).Error
}

func (r *EmployeeRepository) Update(e *model.Employee) error {
	return r.DB.Save(e).Error
}

func (r *EmployeeRepository) FindByID(id uint) (*model.Employee, error) {
	var e model.Employee
	err := r.DB.First(&e, id).Error
	return &e, err
}

func (r *EmployeeRepository) FindByEmail(email string) (*model.Employee, error) {
	var e model.Employee
	err := r.DB.Where("email = ?", email).First(&e).Error
	return &e, err
}

func (r *EmployeeRepository) List(page, limit int) ([]model.Employee, int64, error) {
	var es []model.Employee
	var total int64
	query := r.DB.Model(&model.Employee{}).Where("disabled = ?", false)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("name asc").Offset(offset).Limit(limit).Find(&es).Error
	return es, total, err
}

func (r *EmployeeRepository) ListAll() ([]model.Employee, error) {
	var es []model.Employee
	err := r.DB.Where("disabled = ?", false).Find(&es).Error
	return es, err
}

func (r *EmployeeRepository) ListByService(service string) ([]model.Employee, error) {
	var es []model.Employee
	err := r.DB.Where("service = ? AND disabled = ?", service, false).Find(&es).Error
	return es, err
}

func (r *EmployeeRepository) ListServices() ([]string, error) {
	var services []string
	err := r.DB.Model(&model.Employee{}).
		Where("service <> ''").
		Distinct("service").
		Pluck("service", &services).Error
	return services, err
}

func (r *EmployeeRepository) UpdateLastSeen(employeeID uint) error {
	return r.DB.Model(&model.Employee{}).
		Where("id = ?", employeeID).
		Update("last_seen", time.Now()).Error
}

func (r *EmployeeRepository) UpdateLastLogin(employeeID uint) error {
	return r.DB.Model(&model.Employee{}).
		Where("id = ?", employeeID).
		Update("last_login", time.Now()).Error
}

package service

import (
	"errors"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"

	"gorm.io/gorm"
)

type EmployeeService struct {
	EmployeeRepo *repository.EmployeeRepository
}

func NewEmployeeService(employeeRepo *repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{EmployeeRepo: employeeRepo}
}

func (s *EmployeeService) GetProfile(employeeID uint) (*model.Employee, error) {
	employee, err := s.EmployeeRepo.FindByID(employeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEmployeeNotFound
	}
	return employee, err
}

// UpdateProfileRequest 员工可自行修改的字段
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Language string `json:"language" binding:"omitempty,oneof=fr en"`
	Avatar   string `json:"avatar"`
}

func (s *EmployeeService) UpdateProfile(employeeID uint, req UpdateProfileRequest) (*model.Employee, error) {
	employee, err := s.GetProfile(employeeID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		employee.Name = req.Name
	}
	if req.Language != "" {
		employee.Language = req.Language
	}
	if req.Avatar != "" {
		employee.Avatar = req.Avatar
	}

	if err := s.EmployeeRepo.Update(employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// UpdateAssignmentRequest 管理端维护的岗位信息
type UpdateAssignmentRequest struct {
	Service  string   `json:"service"`
	JobRoles []string `json:"jobRoles"`
	Role     string   `json:"role" binding:"omitempty,oneof=employee hse_manager admin"`
	Disabled *bool    `json:"disabled"`
}

// UpdateAssignment 由 HSE 负责人调整员工的服务、岗位与访问角色
func (s *EmployeeService) UpdateAssignment(employeeID uint, req UpdateAssignmentRequest) (*model.Employee, error) {
	employee, err := s.GetProfile(employeeID)
	if err != nil {
		return nil, err
	}

	if req.Service != "" {
		employee.Service = req.Service
	}
	if req.JobRoles != nil {
		employee.JobRoles = req.JobRoles
	}
	if req.Role != "" {
		employee.Role = model.AccessRole(req.Role)
	}
	if req.Disabled != nil {
		employee.Disabled = *req.Disabled
	}

	if err := s.EmployeeRepo.Update(employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *EmployeeService) List(page, limit int, service string) ([]model.Employee, int64, error) {
	if service != "" {
		employees, err := s.EmployeeRepo.ListByService(service)
		return employees, int64(len(employees)), err
	}
	return s.EmployeeRepo.List(page, limit)
}

func (s *EmployeeService) ListServices() ([]string, error) {
	return s.EmployeeRepo.ListServices()
}

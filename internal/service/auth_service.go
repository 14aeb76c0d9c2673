package service

import (
	"hse_training_backend/internal/config"
	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	EmployeeRepo *repository.EmployeeRepository
	Cfg          *config.Config
}

func NewAuthService(employeeRepo *repository.EmployeeRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		EmployeeRepo: employeeRepo,
		Cfg:          cfg,
	}
}

func (s *AuthService) Register(employee *model.Employee) error {
	_, err := s.EmployeeRepo.FindByEmail(employee.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(employee.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	employee.Password = string(hashedPassword)
	return s.EmployeeRepo.Create(employee)
}

func (s *AuthService) Login(email, password string) (string, error) {
	employee, err := s.EmployeeRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidLogin
	}
	if employee.Disabled {
		return "", util.ErrInvalidLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidLogin
	}

	// 登录时间异步更新，失败不影响登录
	go s.EmployeeRepo.UpdateLastLogin(employee.ID)

	return util.GenerateJWT(employee, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentEmployee(c *gin.Context) *model.Employee {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	employee, _ := s.EmployeeRepo.FindByID(claims.EmployeeID)
	return employee
}

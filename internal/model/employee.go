package model

import (
	"time"
)

type AccessRole string

const (
	RoleEmployee AccessRole = "employee"
	RoleManager  AccessRole = "hse_manager"
	RoleAdmin    AccessRole = "admin"
)

// Employee 员工目录记录。JobRoles 是岗位角色（决定必修培训），
// Role 是后台访问角色，两者独立。
// swagger:model Employee
type Employee struct {
	BaseModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;unique;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      AccessRole `gorm:"size:20;default:'employee'" json:"role"`
	JobRoles  []string   `gorm:"serializer:json" json:"jobRoles"`
	Service   string     `gorm:"size:100;index" json:"service"`
	Language  string     `gorm:"size:10;default:'zh'" json:"language"`
	Avatar    string     `gorm:"size:255" json:"avatar"`
	Disabled  bool       `gorm:"default:false" json:"disabled"`
	LastLogin time.Time  `json:"lastLogin"`
	LastSeen  time.Time  `json:"lastSeen"`
}

func (Employee) TableName() string {
	return "employees"
}

// HasJobRole 判断员工是否具有指定岗位角色
func (e *Employee) HasJobRole(role string) bool {
	for _, r := range e.JobRoles {
		if r == role {
			return true
		}
	}
	return false
}

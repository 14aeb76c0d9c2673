package model

import "time"

const (
	ComplianceCompleted = "completed"
	ComplianceExpired   = "expired"
	ComplianceMissing   = "missing"
)

// ComplianceItem 单个必修培训的合规分类结果
type ComplianceItem struct {
	ModuleID    uint       `json:"moduleId"`
	ModuleCode  string     `json:"moduleCode"`
	ModuleTitle string     `json:"moduleTitle"`
	Status      string     `json:"status"` // completed, expired, missing
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// ComplianceRecord 员工合规汇总，派生数据不落库。
// TotalRequired 为 0 时 Rate 恒为 100。
type ComplianceRecord struct {
	EmployeeID    uint             `json:"employeeId"`
	EmployeeName  string           `json:"employeeName"`
	Service       string           `json:"service"`
	TotalRequired int              `json:"totalRequired"`
	Completed     int              `json:"completed"`
	Expired       int              `json:"expired"`
	Missing       int              `json:"missing"`
	Rate          int              `json:"rate"`
	Items         []ComplianceItem `json:"items,omitempty"`
}

// GroupCompliance 服务/岗位角色维度的合规汇总（成员个人比率的算术平均）
type GroupCompliance struct {
	Group         string `json:"group"`
	EmployeeCount int    `json:"employeeCount"`
	Rate          int    `json:"rate"`
}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityRank 排序用：high > medium > low
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// EmployeeAction 整改清单条目
type EmployeeAction struct {
	EmployeeID uint     `json:"employeeId"`
	Name       string   `json:"name"`
	Service    string   `json:"service"`
	Rate       int      `json:"rate"`
	Priority   string   `json:"priority"`
	Reasons    []string `json:"reasons,omitempty"`
}

package model

import "time"

// EquipmentCheck 安全设备定期检查记录（灭火器、安全带等）
// swagger:model EquipmentCheck
type EquipmentCheck struct {
	BaseModel
	Name            string    `gorm:"size:255;not null" json:"name"`
	Location        string    `gorm:"size:255" json:"location"`
	SerialNumber    string    `gorm:"size:100;index" json:"serialNumber"`
	FrequencyMonths int       `gorm:"default:12" json:"frequencyMonths"`
	LastCheckedAt   time.Time `json:"lastCheckedAt"`
	CheckedBy       string    `gorm:"size:64" json:"checkedBy"`
}

func (EquipmentCheck) TableName() string {
	return "equipment_checks"
}

// NextCheckDue 下次检查到期日（派生，不落库）
func (e *EquipmentCheck) NextCheckDue() time.Time {
	return e.LastCheckedAt.AddDate(0, e.FrequencyMonths, 0)
}

// IsOverdue 是否已逾期未检
func (e *EquipmentCheck) IsOverdue(now time.Time) bool {
	return now.After(e.NextCheckDue())
}

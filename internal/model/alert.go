package model

const (
	AlertTrainingExpiring     = "training_expiring"
	AlertTrainingExpired      = "training_expired"
	AlertLowCompliance        = "low_compliance"
	AlertHabilitationExpiring = "habilitation_expiring"
	AlertEquipmentCheck       = "equipment_check"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert 告警记录。去重键为 (Type, Message, SubjectID)，
// 仅与未读告警比对。
// swagger:model Alert
type Alert struct {
	BaseModel
	Type      string `gorm:"size:50;index" json:"type"`
	Message   string `gorm:"type:text" json:"message"`
	SubjectID string `gorm:"size:64;index" json:"subjectId"`
	Severity  string `gorm:"size:20;default:'info'" json:"severity"`
	IsRead    bool   `gorm:"default:false" json:"isRead"`
}

func (Alert) TableName() string {
	return "alerts"
}

// DedupKey 未读去重键
func (a *Alert) DedupKey() string {
	return a.Type + "|" + a.Message + "|" + a.SubjectID
}

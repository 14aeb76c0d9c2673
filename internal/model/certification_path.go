package model

// CertificationPath 认证路径目录：一个培训 + 一个延迟评估 + 一个条件性资格授权
// swagger:model CertificationPath
type CertificationPath struct {
	BaseModel
	Code                       string `gorm:"size:50;unique;not null" json:"code"`
	Title                      string `gorm:"size:255;not null" json:"title"`
	TrainingModuleID           uint   `gorm:"index;type:bigint unsigned" json:"trainingModuleId"`
	AssessmentID               uint   `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	DaysBeforeAssessment       int    `gorm:"default:0" json:"daysBeforeAssessment"`
	PassingScore               int    `gorm:"default:0" json:"passingScore"`
	HabilitationCode           string `gorm:"size:50;not null" json:"habilitationCode"`
	HabilitationValidityMonths int    `gorm:"default:0" json:"habilitationValidityMonths"`
}

func (CertificationPath) TableName() string {
	return "certification_paths"
}

func (p *CertificationPath) EffectivePassingScore() int {
	if p.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return p.PassingScore
}

package model

const DefaultPassingScore = 80

// TrainingModule 培训目录（只读参考数据，外部编制）
// swagger:model TrainingModule
type TrainingModule struct {
	BaseModel
	Code             string   `gorm:"size:50;unique;not null" json:"code"`
	Title            string   `gorm:"size:255;not null" json:"title"`
	Category         string   `gorm:"size:100;index" json:"category"`
	Objectives       []string `gorm:"serializer:json" json:"objectives"`
	DurationHours    int      `gorm:"default:0" json:"durationHours"`
	ValidityMonths   int      `gorm:"default:0" json:"validityMonths"`
	RequiredForRoles []string `gorm:"serializer:json" json:"requiredForRoles"`
	PassingScore     int      `gorm:"default:0" json:"passingScore"`
	IsActive         bool     `gorm:"default:true" json:"isActive"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

// EffectivePassingScore 目录未填写合格线时默认 80 分
func (m *TrainingModule) EffectivePassingScore() int {
	if m.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return m.PassingScore
}

// RequiredFor 判断模块是否属于给定岗位角色集合的必修培训
func (m *TrainingModule) RequiredFor(jobRoles []string) bool {
	for _, required := range m.RequiredForRoles {
		for _, r := range jobRoles {
			if required == r {
				return true
			}
		}
	}
	return false
}

// ContentModule 培训模块下的内容单元（章节）
type ContentModule struct {
	BaseModel
	ModuleID uint   `gorm:"index;type:bigint unsigned" json:"moduleId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Order    int    `gorm:"default:0" json:"order"`
}

func (ContentModule) TableName() string {
	return "content_modules"
}

package model

import (
	"encoding/json"
	"time"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	TimeLimit    int        `gorm:"default:0" json:"timeLimit"` // Minutes
	PassingScore int        `gorm:"default:0" json:"passingScore"`
	IsPublished  bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (a *Assessment) EffectivePassingScore() int {
	if a.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return a.PassingScore
}

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionOpen           = "open"
)

// AssessmentQuestion 评估题目。Answer 存放标准答案：普通字符串，
// 或 JSON 数组（此时判分按集合成员匹配）。
// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	BaseModel
	AssessmentID uint            `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	QuestionType string          `gorm:"size:50;not null" json:"questionType"` // multiple_choice, true_false, open
	Title        string          `gorm:"size:255" json:"title"`
	Content      string          `gorm:"type:text;not null" json:"content"`
	Options      json.RawMessage `gorm:"type:json" json:"options"`
	Answer       string          `gorm:"type:text" json:"answer"`
	Points       int             `gorm:"default:0" json:"points"`
	Order        int             `gorm:"default:0" json:"order"`
	Explanation  string          `gorm:"type:text" json:"explanation"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// IsOpen 开放题不参与自动判分，需人工批改
func (q *AssessmentQuestion) IsOpen() bool {
	return q.QuestionType == QuestionOpen
}

// MatchesAnswer 原样字符串精确比对（不去空格、不折叠大小写）；
// 标准答案为 JSON 数组时按集合成员匹配。沿用现行规则，勿私自归一化。
func (q *AssessmentQuestion) MatchesAnswer(submitted string) bool {
	var accepted []string
	if err := json.Unmarshal([]byte(q.Answer), &accepted); err == nil {
		for _, a := range accepted {
			if submitted == a {
				return true
			}
		}
		return false
	}
	return submitted == q.Answer
}

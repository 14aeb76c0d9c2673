package model

import (
	"time"
)

const (
	SubmissionAssigned  = "assigned"
	SubmissionStarted   = "started"
	SubmissionSubmitted = "submitted"
	SubmissionCorrected = "corrected"
)

// AssessmentSubmission 候选人一次评估作答。
// Attempt 记录重考次数，引擎不设上限。
// swagger:model AssessmentSubmission
type AssessmentSubmission struct {
	UUIDBase
	AssessmentID uint              `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	CandidateID  string            `gorm:"index;size:64;not null" json:"candidateId"`
	Status       string            `gorm:"size:20;default:'assigned'" json:"status"`
	Answers      map[string]string `gorm:"serializer:json" json:"answers"`
	Score        *int              `json:"score,omitempty"`
	IsPassed     *bool             `json:"isPassed,omitempty"`
	CorrectorID  *uint             `gorm:"type:bigint unsigned" json:"correctorId,omitempty"`
	Comments     map[string]string `gorm:"serializer:json" json:"comments,omitempty"`
	Attempt      int               `gorm:"default:1" json:"attempt"`
	StartedAt    *time.Time        `json:"startedAt,omitempty"`
	SubmittedAt  *time.Time        `json:"submittedAt,omitempty"`
	CorrectedAt  *time.Time        `json:"correctedAt,omitempty"`
	IsTimeout    bool              `gorm:"default:false" json:"isTimeout"`

	// Source 标记合并读取时记录来源（remote / local），不落库
	Source string `gorm:"-" json:"source,omitempty"`
}

func (AssessmentSubmission) TableName() string {
	return "assessment_submissions"
}

// IsFinalized 已提交或已批改的作答不允许再次定稿
func (s *AssessmentSubmission) IsFinalized() bool {
	return s.Status == SubmissionSubmitted || s.Status == SubmissionCorrected
}

// Deadline 限时评估的截止时刻；无限时或未开始返回 nil
func (s *AssessmentSubmission) Deadline(timeLimitMinutes int) *time.Time {
	if s.StartedAt == nil || timeLimitMinutes <= 0 {
		return nil
	}
	d := s.StartedAt.Add(time.Duration(timeLimitMinutes) * time.Minute)
	return &d
}

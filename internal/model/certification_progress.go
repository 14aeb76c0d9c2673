package model

import (
	"time"
)

const (
	CandidateEmployee = "employee"
	CandidateExternal = "external"
)

// 认证路径阶段，有序且只能逐级前进
const (
	StageNotStarted           = "not_started"
	StageTrainingInProgress   = "training_in_progress"
	StageTrainingCompleted    = "training_completed"
	StageEvaluationAvailable  = "evaluation_available"
	StageEvaluationInProgress = "evaluation_in_progress"
	StageEvaluationSubmitted  = "evaluation_submitted"
	StageEvaluationCorrected  = "evaluation_corrected"
	StageHabilitationGranted  = "habilitation_granted"
	StageEvaluationFailed     = "evaluation_failed"
)

var stageRank = map[string]int{
	StageNotStarted:           0,
	StageTrainingInProgress:   1,
	StageTrainingCompleted:    2,
	StageEvaluationAvailable:  3,
	StageEvaluationInProgress: 4,
	StageEvaluationSubmitted:  5,
	StageEvaluationCorrected:  6,
	StageHabilitationGranted:  7,
	StageEvaluationFailed:     7,
}

// StageRank 阶段序号；未知阶段返回 -1
func StageRank(stage string) int {
	rank, ok := stageRank[stage]
	if !ok {
		return -1
	}
	return rank
}

// CertificationPathProgress 候选人在某认证路径上的进度。
// 每个 (PathID, CandidateID) 只允许一条活跃（非终态）记录。
// swagger:model CertificationPathProgress
type CertificationPathProgress struct {
	UUIDBase
	PathID                  uint       `gorm:"index;type:bigint unsigned" json:"pathId"`
	CandidateID             string     `gorm:"index;size:64;not null" json:"candidateId"`
	CandidateType           string     `gorm:"size:20;default:'employee'" json:"candidateType"`
	Status                  string     `gorm:"size:30;default:'not_started'" json:"status"`
	TrainingScore           *int       `json:"trainingScore,omitempty"`
	TrainingCompletedAt     *time.Time `json:"trainingCompletedAt,omitempty"`
	EvaluationAvailableDate *time.Time `json:"evaluationAvailableDate,omitempty"`
	EvaluationScore         *int       `json:"evaluationScore,omitempty"`
	EvaluationPassed        *bool      `json:"evaluationPassed,omitempty"`
	HabilitationGrantedAt   *time.Time `json:"habilitationGrantedAt,omitempty"`
	HabilitationExpiryDate  *time.Time `json:"habilitationExpiryDate,omitempty"`
	CertificateURL          string     `gorm:"size:255" json:"certificateUrl,omitempty"`
	AssignedBy              uint       `gorm:"type:bigint unsigned" json:"assignedBy"`
	AssignedAt              time.Time  `json:"assignedAt"`

	// Source 标记合并读取时记录来源（remote / local），不落库
	Source string `gorm:"-" json:"source,omitempty"`
}

func (CertificationPathProgress) TableName() string {
	return "certification_path_progress"
}

// IsTerminal 终态：资格已授予或评估未通过
func (p *CertificationPathProgress) IsTerminal() bool {
	return p.Status == StageHabilitationGranted || p.Status == StageEvaluationFailed
}

// CanAdvanceTo 阶段机只能逐级前进，不能回退、跳级或离开终态
func (p *CertificationPathProgress) CanAdvanceTo(next string) bool {
	cur, target := StageRank(p.Status), StageRank(next)
	if cur < 0 || target < 0 || p.IsTerminal() {
		return false
	}
	return target == cur+1
}

// StartTraining not_started → training_in_progress
func (p *CertificationPathProgress) StartTraining() bool {
	if !p.CanAdvanceTo(StageTrainingInProgress) {
		return false
	}
	p.Status = StageTrainingInProgress
	return true
}

// CompleteTraining 记录培训完成时间并按整天数推算评估可用日期。
// evaluationAvailableDate = now + daysBeforeAssessment 天，精确天数运算。
func (p *CertificationPathProgress) CompleteTraining(now time.Time, trainingScore, daysBeforeAssessment int) bool {
	if !p.CanAdvanceTo(StageTrainingCompleted) {
		return false
	}
	completed := now
	available := now.AddDate(0, 0, daysBeforeAssessment)
	p.TrainingScore = &trainingScore
	p.TrainingCompletedAt = &completed
	p.EvaluationAvailableDate = &available
	p.Status = StageTrainingCompleted
	p.RefreshStage(now)
	return true
}

// RefreshStage 到达评估可用日期后推进到 evaluation_available。
// 只读派生的阶段推进，供读取路径调用。
func (p *CertificationPathProgress) RefreshStage(now time.Time) bool {
	if p.Status != StageTrainingCompleted || p.EvaluationAvailableDate == nil {
		return false
	}
	if now.Before(*p.EvaluationAvailableDate) {
		return false
	}
	p.Status = StageEvaluationAvailable
	return true
}

// StartEvaluation evaluation_available → evaluation_in_progress
func (p *CertificationPathProgress) StartEvaluation() bool {
	if p.Status != StageEvaluationAvailable {
		return false
	}
	p.Status = StageEvaluationInProgress
	return true
}

// SubmitEvaluation evaluation_in_progress → evaluation_submitted
func (p *CertificationPathProgress) SubmitEvaluation() bool {
	if !p.CanAdvanceTo(StageEvaluationSubmitted) {
		return false
	}
	p.Status = StageEvaluationSubmitted
	return true
}

// CompleteEvaluation 批改已交卷的评估：通过则授予资格并推算到期日，
// 未通过进入终态。habilitationGrantedAt 有值 ⟺ evaluationPassed = true。
func (p *CertificationPathProgress) CompleteEvaluation(now time.Time, score int, passed bool, habilitationValidityMonths int) bool {
	if p.Status != StageEvaluationSubmitted {
		return false
	}
	p.EvaluationScore = &score
	p.EvaluationPassed = &passed
	p.Status = StageEvaluationCorrected

	if passed {
		granted := now
		expiry := now.AddDate(0, habilitationValidityMonths, 0)
		p.HabilitationGrantedAt = &granted
		p.HabilitationExpiryDate = &expiry
		p.Status = StageHabilitationGranted
	} else {
		p.HabilitationGrantedAt = nil
		p.HabilitationExpiryDate = nil
		p.Status = StageEvaluationFailed
	}
	return true
}

// HabilitationExpiringWithin 资格将在 d 时间内到期
func (p *CertificationPathProgress) HabilitationExpiringWithin(now time.Time, d time.Duration) bool {
	if p.Status != StageHabilitationGranted || p.HabilitationExpiryDate == nil {
		return false
	}
	return p.HabilitationExpiryDate.After(now) && p.HabilitationExpiryDate.Before(now.Add(d))
}

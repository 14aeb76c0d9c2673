package model

import (
	"time"
)

const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
	// ProgressExpired 只作为读取时的派生状态，绝不落库
	ProgressExpired = "expired"
)

// AssessmentResult 培训内测验的一次结果（历史记录，追加不覆盖）
type AssessmentResult struct {
	Score      int       `json:"score"`
	Passed     bool      `json:"passed"`
	RecordedAt time.Time `json:"recordedAt"`
}

// TrainingProgress 员工在某培训模块上的进度，(EmployeeID, ModuleID) 唯一。
// 记录只重置、不删除。
// swagger:model TrainingProgress
type TrainingProgress struct {
	BaseModel
	EmployeeID          uint               `gorm:"uniqueIndex:idx_employee_module;type:bigint unsigned" json:"employeeId"`
	ModuleID            uint               `gorm:"uniqueIndex:idx_employee_module;type:bigint unsigned" json:"moduleId"`
	Status              string             `gorm:"size:20;default:'not_started'" json:"status"`
	CompletedContentIDs []uint             `gorm:"serializer:json" json:"completedContentModuleIds"`
	AssessmentResults   []AssessmentResult `gorm:"serializer:json" json:"assessmentResults"`
	CompletedAt         *time.Time         `json:"completedAt,omitempty"`
	ExpiresAt           *time.Time         `json:"expiresAt,omitempty"`

	// Source 标记合并读取时记录来源（remote / local），不落库
	Source string `gorm:"-" json:"source,omitempty"`
}

func (TrainingProgress) TableName() string {
	return "training_progress"
}

// MarkContentCompleted 幂等集合插入，重复的 contentID 不产生重复条目。
// 返回是否发生了变化。
func (p *TrainingProgress) MarkContentCompleted(contentID uint) bool {
	for _, id := range p.CompletedContentIDs {
		if id == contentID {
			return false
		}
	}
	p.CompletedContentIDs = append(p.CompletedContentIDs, contentID)
	if p.Status == ProgressNotStarted {
		p.Status = ProgressInProgress
	}
	return true
}

// RecordResult 追加一次测验结果到历史
func (p *TrainingProgress) RecordResult(r AssessmentResult) {
	p.AssessmentResults = append(p.AssessmentResults, r)
	if p.Status == ProgressNotStarted {
		p.Status = ProgressInProgress
	}
}

// LatestResult 返回最近一次测验结果，无记录时返回 nil
func (p *TrainingProgress) LatestResult() *AssessmentResult {
	if len(p.AssessmentResults) == 0 {
		return nil
	}
	return &p.AssessmentResults[len(p.AssessmentResults)-1]
}

// HasPassingLatest 最近一次测验是否通过；完成培训的前置条件
func (p *TrainingProgress) HasPassingLatest() bool {
	latest := p.LatestResult()
	return latest != nil && latest.Passed
}

// Complete 标记培训完成并按有效期推算到期时间。
// 调用方负责先校验 HasPassingLatest。
func (p *TrainingProgress) Complete(now time.Time, validityMonths int) {
	p.Status = ProgressCompleted
	completed := now
	p.CompletedAt = &completed
	if validityMonths > 0 {
		expires := now.AddDate(0, validityMonths, 0)
		p.ExpiresAt = &expires
	} else {
		p.ExpiresAt = nil
	}
}

// Reset 清空回 not_started，供重修使用
func (p *TrainingProgress) Reset() {
	p.Status = ProgressNotStarted
	p.CompletedContentIDs = nil
	p.AssessmentResults = nil
	p.CompletedAt = nil
	p.ExpiresAt = nil
}

// IsExpired 纯函数判断是否过期，避免落库的陈旧标志
func (p *TrainingProgress) IsExpired(now time.Time) bool {
	return p.Status == ProgressCompleted && p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// DerivedStatus 读取时派生状态（含 expired）
func (p *TrainingProgress) DerivedStatus(now time.Time) string {
	if p.IsExpired(now) {
		return ProgressExpired
	}
	return p.Status
}

// ExpiringWithin 已完成且将在 d 时间内到期
func (p *TrainingProgress) ExpiringWithin(now time.Time, d time.Duration) bool {
	if p.Status != ProgressCompleted || p.ExpiresAt == nil {
		return false
	}
	return p.ExpiresAt.After(now) && p.ExpiresAt.Before(now.Add(d))
}

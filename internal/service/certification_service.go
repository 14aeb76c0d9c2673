package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"
	"hse_training_backend/pkg/logger"
	"hse_training_backend/pkg/offline"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CertificationService 认证路径编排：培训 → 等待期 → 评估 → 资格授予。
// 同一候选人在同一路径上只允许一条活跃记录。
type CertificationService struct {
	Repo    *repository.CertificationRepository
	Persist *PersistService
}

func NewCertificationService(repo *repository.CertificationRepository, persist *PersistService) *CertificationService {
	return &CertificationService{Repo: repo, Persist: persist}
}

// ---- 路径管理 ----

func (s *CertificationService) CreatePath(p *model.CertificationPath) error {
	return s.Repo.CreatePath(p)
}

func (s *CertificationService) GetPath(id uint) (*model.CertificationPath, error) {
	p, err := s.Repo.FindPathByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPathNotFound
	}
	return p, err
}

func (s *CertificationService) ListPaths(page, limit int) ([]model.CertificationPath, int64, error) {
	return s.Repo.ListPaths(page, limit)
}

// ---- 进度读取（合并远程 + 离线） ----

func (s *CertificationService) localProgressRecords(ctx context.Context) []model.CertificationPathProgress {
	raws, err := s.Persist.ListLocal(ctx, offline.KeyCertificationProgress)
	if err != nil {
		logger.Log.Warn("offline certification records unavailable", zap.Error(err))
		return nil
	}
	var records []model.CertificationPathProgress
	for _, raw := range raws {
		var p model.CertificationPathProgress
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		p.Source = string(WriteLocal)
		records = append(records, p)
	}
	return records
}

// GetProgress 读取单条进度，读取路径上派生阶段推进
// （training_completed 到期自动呈现为 evaluation_available）。
func (s *CertificationService) GetProgress(ctx context.Context, id string) (*model.CertificationPathProgress, error) {
	var found *model.CertificationPathProgress

	p, err := s.Repo.FindProgressByID(id)
	if err == nil {
		p.Source = string(WriteRemote)
		found = p
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("remote certification read failed, serving offline records only",
			zap.String("progressId", id), zap.Error(err))
	}

	// 离线记录是更晚的写入，覆盖远程版本
	for _, local := range s.localProgressRecords(ctx) {
		if local.ID == id {
			l := local
			found = &l
		}
	}

	if found == nil {
		return nil, util.ErrPathProgressNotFound
	}
	found.RefreshStage(time.Now())
	return found, nil
}

// ListCandidateProgress 候选人全部认证进度，合并远程与离线
func (s *CertificationService) ListCandidateProgress(ctx context.Context, candidateID string) ([]model.CertificationPathProgress, error) {
	byID := make(map[string]model.CertificationPathProgress)
	var order []string

	remote, err := s.Repo.ListProgressByCandidate(candidateID)
	if err != nil {
		logger.Log.Warn("remote certification list failed, serving offline records only",
			zap.String("candidateId", candidateID), zap.Error(err))
	}
	for _, p := range remote {
		p.Source = string(WriteRemote)
		byID[p.ID] = p
		order = append(order, p.ID)
	}

	for _, local := range s.localProgressRecords(ctx) {
		if local.CandidateID != candidateID {
			continue
		}
		if _, seen := byID[local.ID]; !seen {
			order = append(order, local.ID)
		}
		byID[local.ID] = local
	}

	now := time.Now()
	merged := make([]model.CertificationPathProgress, 0, len(order))
	for _, id := range order {
		p := byID[id]
		p.RefreshStage(now)
		merged = append(merged, p)
	}
	return merged, nil
}

func (s *CertificationService) persistProgress(ctx context.Context, p *model.CertificationPathProgress) WriteResult {
	existsRemotely := p.Source == string(WriteRemote)
	return s.Persist.Write(ctx, offline.KeyCertificationProgress, p, func(rctx context.Context) error {
		if existsRemotely {
			return s.Repo.SaveProgress(rctx, p)
		}
		return s.Repo.CreateProgress(rctx, p)
	})
}

// ---- 指派 ----

func (s *CertificationService) hasActiveProgress(ctx context.Context, pathID uint, candidateID string) (bool, error) {
	_, err := s.Repo.FindActiveProgress(pathID, candidateID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("remote active-progress check failed, falling back to offline records",
			zap.Uint("pathId", pathID), zap.Error(err))
	}
	// 离线产生的活跃记录同样参与唯一性约束
	for _, local := range s.localProgressRecords(ctx) {
		if local.PathID == pathID && local.CandidateID == candidateID && !local.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

// AssignToCandidate 把候选人指派到认证路径。
// 已存在活跃记录时拒绝，包括尚未同步的离线记录。
func (s *CertificationService) AssignToCandidate(ctx context.Context, pathID uint, candidateID, candidateType string, assignedBy uint) (*model.CertificationPathProgress, WriteResult, error) {
	if _, err := s.GetPath(pathID); err != nil {
		return nil, WriteResult{}, err
	}

	active, err := s.hasActiveProgress(ctx, pathID, candidateID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if active {
		return nil, WriteResult{}, util.ErrActivePathExists
	}

	if candidateType == "" {
		candidateType = model.CandidateEmployee
	}
	p := &model.CertificationPathProgress{
		UUIDBase:      model.UUIDBase{ID: model.GenerateUUID()},
		PathID:        pathID,
		CandidateID:   candidateID,
		CandidateType: candidateType,
		Status:        model.StageNotStarted,
		AssignedBy:    assignedBy,
		AssignedAt:    time.Now(),
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// BulkOutcome 批量指派中单个候选人的结果
type BulkOutcome struct {
	CandidateID string      `json:"candidateId"`
	ProgressID  string      `json:"progressId,omitempty"`
	Source      WriteSource `json:"source,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// BulkAssignResult 批量指派汇总；单个失败不中断整体
type BulkAssignResult struct {
	Outcomes []BulkOutcome `json:"outcomes"`
	Summary  BulkSummary   `json:"summary"`
}

// BulkAssign 并发把一批候选人指派到同一路径。
// 每个候选人独立走指派流程，远程超时的条目落离线存储，
// 冲突与校验失败按失败计入汇总。
func (s *CertificationService) BulkAssign(ctx context.Context, pathID uint, candidateIDs []string, candidateType string, assignedBy uint) (*BulkAssignResult, error) {
	if _, err := s.GetPath(pathID); err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, len(candidateIDs))
	results := make([]WriteResult, len(candidateIDs))

	var wg sync.WaitGroup
	for i, candidateID := range candidateIDs {
		wg.Add(1)
		go func(i int, candidateID string) {
			defer wg.Done()
			p, result, err := s.AssignToCandidate(ctx, pathID, candidateID, candidateType, assignedBy)
			outcomes[i] = BulkOutcome{CandidateID: candidateID}
			if err != nil {
				outcomes[i].Error = err.Error()
				results[i] = WriteResult{Err: err}
				return
			}
			outcomes[i].ProgressID = p.ID
			outcomes[i].Source = result.Source
			results[i] = result
		}(i, candidateID)
	}
	wg.Wait()

	return &BulkAssignResult{
		Outcomes: outcomes,
		Summary:  Summarize(results),
	}, nil
}

// ---- 阶段推进 ----

// StartTraining not_started → training_in_progress
func (s *CertificationService) StartTraining(ctx context.Context, progressID string) (*model.CertificationPathProgress, WriteResult, error) {
	p, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if p.IsTerminal() {
		return nil, WriteResult{}, util.ErrTerminalProgress
	}
	if !p.StartTraining() {
		return nil, WriteResult{}, util.ErrInvalidState
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// CompleteTraining 记录培训成绩并按路径配置的整天数推算评估可用日期
func (s *CertificationService) CompleteTraining(ctx context.Context, progressID string, trainingScore int) (*model.CertificationPathProgress, WriteResult, error) {
	p, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if p.IsTerminal() {
		return nil, WriteResult{}, util.ErrTerminalProgress
	}
	path, err := s.GetPath(p.PathID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if !p.CompleteTraining(time.Now(), trainingScore, path.DaysBeforeAssessment) {
		return nil, WriteResult{}, util.ErrInvalidState
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// StartEvaluation 评估可用日期未到时拒绝
func (s *CertificationService) StartEvaluation(ctx context.Context, progressID string) (*model.CertificationPathProgress, WriteResult, error) {
	p, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if p.IsTerminal() {
		return nil, WriteResult{}, util.ErrTerminalProgress
	}
	if p.Status == model.StageTrainingCompleted {
		return nil, WriteResult{}, util.ErrEvaluationNotDue
	}
	if !p.StartEvaluation() {
		return nil, WriteResult{}, util.ErrInvalidState
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// MarkEvaluationSubmitted 评估交卷后推进阶段
func (s *CertificationService) MarkEvaluationSubmitted(ctx context.Context, progressID string) (*model.CertificationPathProgress, WriteResult, error) {
	p, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if p.IsTerminal() {
		return nil, WriteResult{}, util.ErrTerminalProgress
	}
	if !p.SubmitEvaluation() {
		return nil, WriteResult{}, util.ErrInvalidState
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// CompleteEvaluation 评估批改完成：通过则授予资格并按整月推算到期日，
// 未通过进入终态 evaluation_failed。
func (s *CertificationService) CompleteEvaluation(ctx context.Context, progressID string, score int) (*model.CertificationPathProgress, WriteResult, error) {
	p, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if p.IsTerminal() {
		return nil, WriteResult{}, util.ErrTerminalProgress
	}
	path, err := s.GetPath(p.PathID)
	if err != nil {
		return nil, WriteResult{}, err
	}

	passed := score >= path.EffectivePassingScore()
	if !p.CompleteEvaluation(time.Now(), score, passed, path.HabilitationValidityMonths) {
		return nil, WriteResult{}, util.ErrInvalidState
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// AttachCertificate 给进度挂接证书附件 URL
func (s *CertificationService) AttachCertificate(ctx context.Context, progressID, url string) (*model.CertificationPathProgress, WriteResult, error) {
	p, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	p.CertificateURL = url
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// ListGrantedHabilitations 已授予资格的进度记录，告警计算用
func (s *CertificationService) ListGrantedHabilitations() ([]model.CertificationPathProgress, error) {
	return s.Repo.ListProgressByStatus([]string{model.StageHabilitationGranted})
}

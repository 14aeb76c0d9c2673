package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"
	"hse_training_backend/pkg/logger"
	"hse_training_backend/pkg/offline"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TrainingService 员工培训进度跟踪。
// 所有写操作经持久化适配器落库，远程不可达时降级为离线记录；
// 读操作合并远程与离线两份数据，离线记录优先（更新）。
type TrainingService struct {
	TrainingRepo *repository.TrainingRepository
	ProgressRepo *repository.ProgressRepository
	Persist      *PersistService
}

func NewTrainingService(trainingRepo *repository.TrainingRepository, progressRepo *repository.ProgressRepository, persist *PersistService) *TrainingService {
	return &TrainingService{
		TrainingRepo: trainingRepo,
		ProgressRepo: progressRepo,
		Persist:      persist,
	}
}

// ---- 培训目录 ----

func (s *TrainingService) CreateModule(m *model.TrainingModule) error {
	return s.TrainingRepo.CreateModule(m)
}

func (s *TrainingService) UpdateModule(m *model.TrainingModule) error {
	return s.TrainingRepo.UpdateModule(m)
}

func (s *TrainingService) GetModule(id uint) (*model.TrainingModule, error) {
	m, err := s.TrainingRepo.FindModuleByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	return m, err
}

func (s *TrainingService) ListModules(page, limit int) ([]model.TrainingModule, int64, error) {
	return s.TrainingRepo.ListModules(page, limit)
}

func (s *TrainingService) AddContentModule(c *model.ContentModule) error {
	if _, err := s.GetModule(c.ModuleID); err != nil {
		return err
	}
	return s.TrainingRepo.CreateContentModule(c)
}

func (s *TrainingService) ListContentModules(moduleID uint) ([]model.ContentModule, error) {
	return s.TrainingRepo.ListContentModules(moduleID)
}

// ---- 进度读取（合并远程 + 离线） ----

// MergedEmployeeProgress 合并某员工的远程与离线进度。
// 以 (employeeID, moduleID) 为键去重，离线记录是更晚的写入，覆盖远程。
// 远程读失败时退化为只读离线数据，不报错。
func (s *TrainingService) MergedEmployeeProgress(ctx context.Context, employeeID uint) ([]model.TrainingProgress, error) {
	byModule := make(map[uint]model.TrainingProgress)
	var order []uint

	remote, err := s.ProgressRepo.ListByEmployee(employeeID)
	if err != nil {
		logger.Log.Warn("remote progress read failed, serving offline records only",
			zap.Uint("employeeId", employeeID), zap.Error(err))
	}
	for _, p := range remote {
		p.Source = string(WriteRemote)
		byModule[p.ModuleID] = p
		order = append(order, p.ModuleID)
	}

	raws, err := s.Persist.ListLocal(ctx, offline.KeyTrainingProgress)
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		var p model.TrainingProgress
		if err := json.Unmarshal(raw, &p); err != nil {
			logger.Log.Warn("skipping malformed offline progress record", zap.Error(err))
			continue
		}
		if p.EmployeeID != employeeID {
			continue
		}
		if _, seen := byModule[p.ModuleID]; !seen {
			order = append(order, p.ModuleID)
		}
		p.Source = string(WriteLocal)
		byModule[p.ModuleID] = p
	}

	merged := make([]model.TrainingProgress, 0, len(order))
	for _, moduleID := range order {
		merged = append(merged, byModule[moduleID])
	}
	return merged, nil
}

func (s *TrainingService) findProgress(ctx context.Context, employeeID, moduleID uint) (*model.TrainingProgress, error) {
	all, err := s.MergedEmployeeProgress(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ModuleID == moduleID {
			return &all[i], nil
		}
	}
	return nil, util.ErrProgressNotFound
}

// GetProgress 返回单条进度，状态为读取时派生（含 expired）
func (s *TrainingService) GetProgress(ctx context.Context, employeeID, moduleID uint) (*model.TrainingProgress, error) {
	p, err := s.findProgress(ctx, employeeID, moduleID)
	if err != nil {
		return nil, err
	}
	p.Status = p.DerivedStatus(time.Now())
	return p, nil
}

// ListEmployeeProgress 返回员工全部进度，状态为读取时派生
func (s *TrainingService) ListEmployeeProgress(ctx context.Context, employeeID uint) ([]model.TrainingProgress, error) {
	all, err := s.MergedEmployeeProgress(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range all {
		all[i].Status = all[i].DerivedStatus(now)
	}
	return all, nil
}

// ---- 进度写入 ----

func (s *TrainingService) persistProgress(ctx context.Context, p *model.TrainingProgress) WriteResult {
	return s.Persist.Write(ctx, offline.KeyTrainingProgress, p, func(rctx context.Context) error {
		if p.ID == 0 {
			return s.ProgressRepo.Create(rctx, p)
		}
		return s.ProgressRepo.Save(rctx, p)
	})
}

// Start 开始一个培训模块。幂等：已有进度时原样返回，不重复创建。
func (s *TrainingService) Start(ctx context.Context, employeeID, moduleID uint) (*model.TrainingProgress, WriteResult, error) {
	if _, err := s.GetModule(moduleID); err != nil {
		return nil, WriteResult{}, err
	}

	existing, err := s.findProgress(ctx, employeeID, moduleID)
	if err == nil {
		return existing, WriteResult{Source: WriteSource(existing.Source)}, nil
	}
	if !errors.Is(err, util.ErrProgressNotFound) {
		return nil, WriteResult{}, err
	}

	p := &model.TrainingProgress{
		EmployeeID: employeeID,
		ModuleID:   moduleID,
		Status:     model.ProgressInProgress,
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// CompleteContentModule 标记内容模块已读，重复标记不产生重复条目
func (s *TrainingService) CompleteContentModule(ctx context.Context, employeeID, moduleID, contentID uint) (*model.TrainingProgress, WriteResult, error) {
	p, err := s.findProgress(ctx, employeeID, moduleID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if !p.MarkContentCompleted(contentID) {
		// 已标记过，无需落库
		return p, WriteResult{Source: WriteSource(p.Source)}, nil
	}
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// RecordAssessmentResult 追加一次模块内测验结果到历史
func (s *TrainingService) RecordAssessmentResult(ctx context.Context, employeeID, moduleID uint, score int) (*model.TrainingProgress, WriteResult, error) {
	p, err := s.findProgress(ctx, employeeID, moduleID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	module, err := s.GetModule(moduleID)
	if err != nil {
		return nil, WriteResult{}, err
	}

	p.RecordResult(model.AssessmentResult{
		Score:      score,
		Passed:     score >= module.EffectivePassingScore(),
		RecordedAt: time.Now(),
	})
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// CompleteTraining 完成培训：要求全部内容模块已读且最近一次测验通过。
// 到期时间按目录上配置的有效期整月推算。
func (s *TrainingService) CompleteTraining(ctx context.Context, employeeID, moduleID uint) (*model.TrainingProgress, WriteResult, error) {
	p, err := s.findProgress(ctx, employeeID, moduleID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	module, err := s.GetModule(moduleID)
	if err != nil {
		return nil, WriteResult{}, err
	}

	total, err := s.TrainingRepo.CountContentModules(moduleID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if int64(len(p.CompletedContentIDs)) < total {
		return nil, WriteResult{}, util.ErrInvalidState
	}
	if !p.HasPassingLatest() {
		return nil, WriteResult{}, util.ErrNoPassingResult
	}

	p.Complete(time.Now(), module.ValidityMonths)
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

// Reset 重置进度回 not_started，历史记录清空但记录本身保留
func (s *TrainingService) Reset(ctx context.Context, employeeID, moduleID uint) (*model.TrainingProgress, WriteResult, error) {
	p, err := s.findProgress(ctx, employeeID, moduleID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	p.Reset()
	result := s.persistProgress(ctx, p)
	return p, result, result.Err
}

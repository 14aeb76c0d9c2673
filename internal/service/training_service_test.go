package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"
	"hse_training_backend/pkg/offline"
)

func newTrainingEnv(t *testing.T) (*TrainingService, *repository.ProgressRepository, *memStore) {
	t.Helper()
	db := newTestDB(t)
	trainingRepo := repository.NewTrainingRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	store := newMemStore()
	svc := NewTrainingService(trainingRepo, progressRepo, NewPersistService(store, time.Second))
	return svc, progressRepo, store
}

func newModule(t *testing.T, svc *TrainingService, code string, validityMonths int) *model.TrainingModule {
	t.Helper()
	m := &model.TrainingModule{
		Code:           code,
		Title:          "电气作业安全",
		ValidityMonths: validityMonths,
		IsActive:       true,
	}
	if err := svc.CreateModule(m); err != nil {
		t.Fatalf("create module: %v", err)
	}
	return m
}

func TestStartIsIdempotent(t *testing.T) {
	svc, progressRepo, _ := newTrainingEnv(t)
	ctx := context.Background()
	m := newModule(t, svc, "HSE-ELEC", 12)

	p1, result, err := svc.Start(ctx, 7, m.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if p1.Status != model.ProgressInProgress || result.Source != WriteRemote {
		t.Fatalf("progress = %+v result = %+v", p1, result)
	}

	p2, _, err := svc.Start(ctx, 7, m.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if p2.ID != p1.ID {
		t.Fatalf("second start created a new record: %d vs %d", p2.ID, p1.ID)
	}
	rows, err := progressRepo.ListByEmployee(7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("progress rows = %d, want 1", len(rows))
	}
}

func TestStartUnknownModule(t *testing.T) {
	svc, _, _ := newTrainingEnv(t)
	if _, _, err := svc.Start(context.Background(), 7, 12345); !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("err = %v, want ErrModuleNotFound", err)
	}
}

func TestCompleteTrainingGates(t *testing.T) {
	svc, _, _ := newTrainingEnv(t)
	ctx := context.Background()
	m := newModule(t, svc, "HSE-ELEC", 12)

	c1 := &model.ContentModule{ModuleID: m.ID, Title: "低压电气基础", Order: 1}
	c2 := &model.ContentModule{ModuleID: m.ID, Title: "上锁挂签", Order: 2}
	for _, c := range []*model.ContentModule{c1, c2} {
		if err := svc.AddContentModule(c); err != nil {
			t.Fatalf("add content: %v", err)
		}
	}

	if _, _, err := svc.Start(ctx, 7, m.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.CompleteContentModule(ctx, 7, m.ID, c1.ID); err != nil {
		t.Fatalf("complete content: %v", err)
	}
	if _, _, err := svc.RecordAssessmentResult(ctx, 7, m.ID, 90); err != nil {
		t.Fatalf("record result: %v", err)
	}

	// 还剩一个内容模块未读
	if _, _, err := svc.CompleteTraining(ctx, 7, m.ID); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}

	if _, _, err := svc.CompleteContentModule(ctx, 7, m.ID, c2.ID); err != nil {
		t.Fatalf("complete content: %v", err)
	}
	// 最近一次测验不合格时不允许完成
	if _, _, err := svc.RecordAssessmentResult(ctx, 7, m.ID, 50); err != nil {
		t.Fatalf("record result: %v", err)
	}
	if _, _, err := svc.CompleteTraining(ctx, 7, m.ID); !errors.Is(err, util.ErrNoPassingResult) {
		t.Fatalf("err = %v, want ErrNoPassingResult", err)
	}

	if _, _, err := svc.RecordAssessmentResult(ctx, 7, m.ID, 85); err != nil {
		t.Fatalf("record result: %v", err)
	}
	p, _, err := svc.CompleteTraining(ctx, 7, m.ID)
	if err != nil {
		t.Fatalf("complete training: %v", err)
	}
	if p.Status != model.ProgressCompleted || p.CompletedAt == nil {
		t.Fatalf("progress = %+v, want completed", p)
	}
	if p.ExpiresAt == nil || !p.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiresAt = %v, want a future date", p.ExpiresAt)
	}
	if len(p.AssessmentResults) != 3 {
		t.Fatalf("result history = %d entries, want 3", len(p.AssessmentResults))
	}
}

func TestRepeatedContentCompletionSkipsWrite(t *testing.T) {
	svc, _, store := newTrainingEnv(t)
	ctx := context.Background()
	m := newModule(t, svc, "HSE-ELEC", 0)
	c := &model.ContentModule{ModuleID: m.ID, Title: "基础"}
	if err := svc.AddContentModule(c); err != nil {
		t.Fatalf("add content: %v", err)
	}

	if _, _, err := svc.Start(ctx, 7, m.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.CompleteContentModule(ctx, 7, m.ID, c.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	p, _, err := svc.CompleteContentModule(ctx, 7, m.ID, c.ID)
	if err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if len(p.CompletedContentIDs) != 1 {
		t.Fatalf("completed ids = %v, want single entry", p.CompletedContentIDs)
	}
	if store.count(offline.KeyTrainingProgress) != 0 {
		t.Error("no-op completion must not write anywhere")
	}
}

func TestMergedProgressPrefersOfflineRecords(t *testing.T) {
	svc, _, store := newTrainingEnv(t)
	ctx := context.Background()
	m := newModule(t, svc, "HSE-ELEC", 12)

	if _, _, err := svc.Start(ctx, 7, m.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// 同一 (员工, 模块) 的离线记录是更晚的写入，覆盖远程版本
	now := time.Now()
	if err := store.Append(ctx, offline.KeyTrainingProgress, &model.TrainingProgress{
		EmployeeID:  7,
		ModuleID:    m.ID,
		Status:      model.ProgressCompleted,
		CompletedAt: &now,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// 远程没有的模块进度只存在于离线存储
	if err := store.Append(ctx, offline.KeyTrainingProgress, &model.TrainingProgress{
		EmployeeID: 7,
		ModuleID:   999,
		Status:     model.ProgressInProgress,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// 其他员工的离线记录不可见
	if err := store.Append(ctx, offline.KeyTrainingProgress, &model.TrainingProgress{
		EmployeeID: 8,
		ModuleID:   m.ID,
		Status:     model.ProgressInProgress,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	merged, err := svc.MergedEmployeeProgress(ctx, 7)
	if err != nil {
		t.Fatalf("merged read: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged = %d entries, want 2", len(merged))
	}

	byModule := make(map[uint]model.TrainingProgress, len(merged))
	for _, p := range merged {
		byModule[p.ModuleID] = p
	}
	if got := byModule[m.ID]; got.Source != string(WriteLocal) || got.Status != model.ProgressCompleted {
		t.Fatalf("module %d progress = %+v, want offline completed", m.ID, got)
	}
	if got := byModule[999]; got.Source != string(WriteLocal) || got.Status != model.ProgressInProgress {
		t.Fatalf("module 999 progress = %+v, want offline in_progress", got)
	}
}

func TestResetKeepsRecord(t *testing.T) {
	svc, progressRepo, _ := newTrainingEnv(t)
	ctx := context.Background()
	m := newModule(t, svc, "HSE-ELEC", 12)

	if _, _, err := svc.Start(ctx, 7, m.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.RecordAssessmentResult(ctx, 7, m.ID, 90); err != nil {
		t.Fatalf("record: %v", err)
	}

	p, _, err := svc.Reset(ctx, 7, m.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p.Status != model.ProgressNotStarted || len(p.AssessmentResults) != 0 {
		t.Fatalf("progress = %+v, want pristine not_started", p)
	}
	rows, err := progressRepo.ListByEmployee(7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, reset must keep the record", len(rows))
	}
}

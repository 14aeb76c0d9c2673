package service

import (
	"context"
	"testing"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
)

func newAlertEnv(t *testing.T) (*AlertService, *repository.AlertRepository) {
	t.Helper()
	db := newTestDB(t)
	store := newMemStore()
	persist := NewPersistService(store, time.Second)

	employeeRepo := repository.NewEmployeeRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	certRepo := repository.NewCertificationRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)

	training := NewTrainingService(trainingRepo, progressRepo, persist)
	compliance := NewComplianceService(employeeRepo, trainingRepo, training)
	certification := NewCertificationService(certRepo, persist)
	svc := NewAlertService(alertRepo, employeeRepo, equipmentRepo, compliance, certification)

	ctx := context.Background()
	now := time.Now()
	past := now.AddDate(0, -1, 0)
	in10d := now.Add(10 * 24 * time.Hour)

	e := &model.Employee{
		Name:     "李四",
		Email:    "lisi@example.com",
		Password: "x",
		JobRoles: []string{"welder"},
		Service:  "atelier",
	}
	if err := employeeRepo.Create(e); err != nil {
		t.Fatalf("create employee: %v", err)
	}
	m := &model.TrainingModule{Code: "HSE-WELD", Title: "焊接安全", RequiredForRoles: []string{"welder"}, IsActive: true}
	if err := trainingRepo.CreateModule(m); err != nil {
		t.Fatalf("create module: %v", err)
	}
	// 必修培训已过期 ⇒ training_expired + low_compliance
	if err := progressRepo.Create(ctx, &model.TrainingProgress{
		EmployeeID: e.ID,
		ModuleID:   m.ID,
		Status:     model.ProgressCompleted,
		ExpiresAt:  &past,
	}); err != nil {
		t.Fatalf("create progress: %v", err)
	}
	// 已授予的资格 10 天后到期 ⇒ habilitation_expiring
	if err := certRepo.CreateProgress(ctx, &model.CertificationPathProgress{
		UUIDBase:               model.UUIDBase{ID: model.GenerateUUID()},
		PathID:                 1,
		CandidateID:            "emp-1",
		Status:                 model.StageHabilitationGranted,
		HabilitationExpiryDate: &in10d,
	}); err != nil {
		t.Fatalf("create certification progress: %v", err)
	}
	// 周期检查逾期 ⇒ equipment_check
	if err := equipmentRepo.Create(&model.EquipmentCheck{
		Name:            "灭火器 A-12",
		FrequencyMonths: 12,
		LastCheckedAt:   now.AddDate(-2, 0, 0),
	}); err != nil {
		t.Fatalf("create equipment: %v", err)
	}

	return svc, alertRepo
}

func TestRecomputeEmitsAndDeduplicates(t *testing.T) {
	svc, alertRepo := newAlertEnv(t)
	ctx := context.Background()

	emitted, err := svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if emitted != 4 {
		t.Fatalf("emitted = %d, want 4", emitted)
	}

	unread, err := alertRepo.ListUnread()
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	types := map[string]int{}
	for _, a := range unread {
		types[a.Type]++
	}
	for _, want := range []string{
		model.AlertTrainingExpired,
		model.AlertLowCompliance,
		model.AlertHabilitationExpiring,
		model.AlertEquipmentCheck,
	} {
		if types[want] != 1 {
			t.Errorf("alerts of type %q = %d, want 1 (all: %v)", want, types[want], types)
		}
	}

	// 同样的状况在下一轮重算中不产生重复告警
	emitted, err = svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if emitted != 0 {
		t.Fatalf("second recompute emitted = %d, want 0", emitted)
	}

	// 已读后状况仍未解决，允许重新告警
	if err := svc.MarkAllRead(); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	emitted, err = svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("third recompute: %v", err)
	}
	if emitted != 4 {
		t.Fatalf("recompute after read emitted = %d, want 4", emitted)
	}
}

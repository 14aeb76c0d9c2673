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

	"gorm.io/gorm"
)

func newCertificationEnv(t *testing.T) (*CertificationService, *memStore) {
	t.Helper()
	db := newTestDB(t)
	store := newMemStore()
	svc := NewCertificationService(repository.NewCertificationRepository(db), NewPersistService(store, time.Second))
	return svc, store
}

func newPath(t *testing.T, svc *CertificationService, daysBeforeAssessment int) *model.CertificationPath {
	t.Helper()
	p := &model.CertificationPath{
		Code:                       "CACES-R489",
		Title:                      "叉车驾驶资格",
		DaysBeforeAssessment:       daysBeforeAssessment,
		HabilitationCode:           "R489-3",
		HabilitationValidityMonths: 24,
	}
	if err := svc.CreatePath(p); err != nil {
		t.Fatalf("create path: %v", err)
	}
	return p
}

func TestCertificationPipelineToGrant(t *testing.T) {
	svc, _ := newCertificationEnv(t)
	ctx := context.Background()
	path := newPath(t, svc, 0)

	p, result, err := svc.AssignToCandidate(ctx, path.ID, "emp-1", "", 99)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if p.Status != model.StageNotStarted || p.CandidateType != model.CandidateEmployee {
		t.Fatalf("progress = %+v, want not_started employee candidate", p)
	}
	if result.Source != WriteRemote {
		t.Fatalf("source = %q, want remote", result.Source)
	}

	if p, _, err = svc.StartTraining(ctx, p.ID); err != nil {
		t.Fatalf("start training: %v", err)
	}
	if p.Status != model.StageTrainingInProgress {
		t.Fatalf("status = %q", p.Status)
	}

	// 等待期为 0 天，完成培训后立即可评估
	if p, _, err = svc.CompleteTraining(ctx, p.ID, 88); err != nil {
		t.Fatalf("complete training: %v", err)
	}
	if p.Status != model.StageEvaluationAvailable {
		t.Fatalf("status = %q, want evaluation_available", p.Status)
	}
	if p.TrainingScore == nil || *p.TrainingScore != 88 {
		t.Fatalf("trainingScore = %v", p.TrainingScore)
	}

	if p, _, err = svc.StartEvaluation(ctx, p.ID); err != nil {
		t.Fatalf("start evaluation: %v", err)
	}
	if p, _, err = svc.MarkEvaluationSubmitted(ctx, p.ID); err != nil {
		t.Fatalf("submit evaluation: %v", err)
	}

	if p, _, err = svc.CompleteEvaluation(ctx, p.ID, 85); err != nil {
		t.Fatalf("complete evaluation: %v", err)
	}
	if p.Status != model.StageHabilitationGranted {
		t.Fatalf("status = %q, want habilitation_granted", p.Status)
	}
	if p.HabilitationExpiryDate == nil || !p.HabilitationExpiryDate.After(time.Now()) {
		t.Fatalf("habilitationExpiryDate = %v, want future date", p.HabilitationExpiryDate)
	}

	// 终态之后一切阶段操作被拒
	if _, _, err := svc.StartTraining(ctx, p.ID); !errors.Is(err, util.ErrTerminalProgress) {
		t.Fatalf("err = %v, want ErrTerminalProgress", err)
	}

	granted, err := svc.ListGrantedHabilitations()
	if err != nil {
		t.Fatalf("list granted: %v", err)
	}
	if len(granted) != 1 || granted[0].ID != p.ID {
		t.Fatalf("granted = %+v, want the single granted record", granted)
	}
}

func TestFailedEvaluationIsTerminal(t *testing.T) {
	svc, _ := newCertificationEnv(t)
	ctx := context.Background()
	path := newPath(t, svc, 0)

	p, _, err := svc.AssignToCandidate(ctx, path.ID, "emp-1", "", 99)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err = svc.StartTraining(ctx, p.ID); err != nil {
		t.Fatalf("start training: %v", err)
	}
	if _, _, err = svc.CompleteTraining(ctx, p.ID, 70); err != nil {
		t.Fatalf("complete training: %v", err)
	}
	if _, _, err = svc.StartEvaluation(ctx, p.ID); err != nil {
		t.Fatalf("start evaluation: %v", err)
	}
	if _, _, err = svc.MarkEvaluationSubmitted(ctx, p.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	p, _, err = svc.CompleteEvaluation(ctx, p.ID, 40)
	if err != nil {
		t.Fatalf("complete evaluation: %v", err)
	}
	if p.Status != model.StageEvaluationFailed {
		t.Fatalf("status = %q, want evaluation_failed", p.Status)
	}
	if p.HabilitationGrantedAt != nil || p.HabilitationExpiryDate != nil {
		t.Fatal("failed evaluation must not carry habilitation dates")
	}

	// 终态记录不再活跃，可重新指派
	if _, _, err := svc.AssignToCandidate(ctx, path.ID, "emp-1", "", 99); err != nil {
		t.Fatalf("reassign after failure: %v", err)
	}
}

func TestStageSkippingRejected(t *testing.T) {
	svc, _ := newCertificationEnv(t)
	ctx := context.Background()
	path := newPath(t, svc, 5)

	p, _, err := svc.AssignToCandidate(ctx, path.ID, "emp-1", "", 99)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	// 刚指派的进度不能绕过培训与等待期直达资格授予
	if _, _, err := svc.CompleteTraining(ctx, p.ID, 90); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("complete training from not_started: err = %v, want ErrInvalidState", err)
	}
	if _, _, err := svc.MarkEvaluationSubmitted(ctx, p.ID); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("submit from not_started: err = %v, want ErrInvalidState", err)
	}
	if _, _, err := svc.CompleteEvaluation(ctx, p.ID, 95); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("correct from not_started: err = %v, want ErrInvalidState", err)
	}

	p, err = svc.GetProgress(ctx, p.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p.Status != model.StageNotStarted {
		t.Fatalf("status = %q, want not_started after rejected transitions", p.Status)
	}
	if p.HabilitationGrantedAt != nil || p.TrainingCompletedAt != nil || p.EvaluationAvailableDate != nil {
		t.Fatalf("rejected transitions must not set dates: %+v", p)
	}
}

func TestEvaluationNotDueBeforeWaitingPeriod(t *testing.T) {
	svc, _ := newCertificationEnv(t)
	ctx := context.Background()
	path := newPath(t, svc, 5)

	p, _, err := svc.AssignToCandidate(ctx, path.ID, "emp-1", "", 99)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err = svc.StartTraining(ctx, p.ID); err != nil {
		t.Fatalf("start training: %v", err)
	}
	if p, _, err = svc.CompleteTraining(ctx, p.ID, 90); err != nil {
		t.Fatalf("complete training: %v", err)
	}
	if p.Status != model.StageTrainingCompleted {
		t.Fatalf("status = %q, want training_completed during waiting period", p.Status)
	}

	if _, _, err := svc.StartEvaluation(ctx, p.ID); !errors.Is(err, util.ErrEvaluationNotDue) {
		t.Fatalf("err = %v, want ErrEvaluationNotDue", err)
	}
}

func TestAssignRejectsActiveProgress(t *testing.T) {
	svc, store := newCertificationEnv(t)
	ctx := context.Background()
	path := newPath(t, svc, 0)

	if _, _, err := svc.AssignToCandidate(ctx, path.ID, "emp-1", "", 99); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err := svc.AssignToCandidate(ctx, path.ID, "emp-1", "", 99); !errors.Is(err, util.ErrActivePathExists) {
		t.Fatalf("err = %v, want ErrActivePathExists", err)
	}

	// 尚未同步的离线记录同样参与唯一性约束
	if err := store.Append(ctx, offline.KeyCertificationProgress, &model.CertificationPathProgress{
		UUIDBase:    model.UUIDBase{ID: model.GenerateUUID()},
		PathID:      path.ID,
		CandidateID: "emp-2",
		Status:      model.StageTrainingInProgress,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, _, err := svc.AssignToCandidate(ctx, path.ID, "emp-2", "", 99); !errors.Is(err, util.ErrActivePathExists) {
		t.Fatalf("err = %v, want ErrActivePathExists for offline active record", err)
	}
}

func TestBulkAssignIsolatesFailures(t *testing.T) {
	svc, _ := newCertificationEnv(t)
	ctx := context.Background()
	path := newPath(t, svc, 0)

	if _, _, err := svc.AssignToCandidate(ctx, path.ID, "dup", "", 99); err != nil {
		t.Fatalf("seed assign: %v", err)
	}

	res, err := svc.BulkAssign(ctx, path.ID, []string{"a", "dup", "b"}, model.CandidateExternal, 99)
	if err != nil {
		t.Fatalf("bulk assign: %v", err)
	}
	if res.Summary.Total != 3 || res.Summary.RemoteCount != 2 || res.Summary.FailedCount != 1 {
		t.Fatalf("summary = %+v", res.Summary)
	}
	for _, o := range res.Outcomes {
		switch o.CandidateID {
		case "dup":
			if o.Error == "" || o.ProgressID != "" {
				t.Errorf("dup outcome = %+v, want error without progress", o)
			}
		default:
			if o.Error != "" || o.ProgressID == "" || o.Source != WriteRemote {
				t.Errorf("outcome = %+v, want remote success", o)
			}
		}
	}

	// 批量结果的顺序与输入一致
	if res.Outcomes[0].CandidateID != "a" || res.Outcomes[1].CandidateID != "dup" || res.Outcomes[2].CandidateID != "b" {
		t.Fatalf("outcomes out of order: %+v", res.Outcomes)
	}
}

func TestBulkAssignSlowRemoteFallsBackOffline(t *testing.T) {
	db := newTestDB(t)
	// 指定候选人的远程写被拖慢到超出持久化超时
	err := db.Callback().Create().Before("gorm:create").Register("stall_slow_candidate", func(tx *gorm.DB) {
		if p, ok := tx.Statement.Dest.(*model.CertificationPathProgress); ok && p.CandidateID == "slow" {
			time.Sleep(250 * time.Millisecond)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	store := newMemStore()
	svc := NewCertificationService(repository.NewCertificationRepository(db), NewPersistService(store, 50*time.Millisecond))
	ctx := context.Background()
	path := newPath(t, svc, 0)

	res, err := svc.BulkAssign(ctx, path.ID, []string{"a", "slow", "b"}, "", 99)
	if err != nil {
		t.Fatalf("bulk assign: %v", err)
	}

	// 超时条目落离线存储并按成功上报，不计为失败
	want := BulkSummary{Total: 3, RemoteCount: 2, OfflineCount: 1, FailedCount: 0}
	if res.Summary != want {
		t.Fatalf("summary = %+v, want %+v", res.Summary, want)
	}
	for _, o := range res.Outcomes {
		if o.Error != "" || o.ProgressID == "" {
			t.Errorf("outcome = %+v, want success with progress id", o)
		}
		wantSource := WriteRemote
		if o.CandidateID == "slow" {
			wantSource = WriteLocal
		}
		if o.Source != wantSource {
			t.Errorf("candidate %s source = %q, want %q", o.CandidateID, o.Source, wantSource)
		}
	}
	if n := store.count(offline.KeyCertificationProgress); n != 1 {
		t.Fatalf("offline records = %d, want 1", n)
	}
}

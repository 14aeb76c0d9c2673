package model

import (
	"testing"
	"time"
)

func TestStageForwardOnly(t *testing.T) {
	p := &CertificationPathProgress{Status: StageEvaluationInProgress}

	if p.CanAdvanceTo(StageTrainingCompleted) {
		t.Error("stage machine must not move backwards")
	}
	if !p.CanAdvanceTo(StageEvaluationSubmitted) {
		t.Error("forward advance should be allowed")
	}
	if p.CanAdvanceTo("bogus_stage") {
		t.Error("unknown stage should be rejected")
	}

	granted := &CertificationPathProgress{Status: StageHabilitationGranted}
	if granted.CanAdvanceTo(StageEvaluationFailed) {
		t.Error("terminal progress must not advance")
	}
}

func TestStageCannotSkip(t *testing.T) {
	p := &CertificationPathProgress{Status: StageNotStarted}

	if p.CanAdvanceTo(StageTrainingCompleted) {
		t.Error("advance must be one stage at a time")
	}
	if p.SubmitEvaluation() {
		t.Error("cannot submit an evaluation before training")
	}
	if p.CompleteEvaluation(time.Now(), 95, true, 24) {
		t.Error("cannot correct an evaluation that was never submitted")
	}
	if p.Status != StageNotStarted || p.HabilitationGrantedAt != nil {
		t.Fatalf("progress mutated by rejected transitions: %+v", p)
	}

	inProgress := &CertificationPathProgress{Status: StageEvaluationInProgress}
	if inProgress.CompleteEvaluation(time.Now(), 95, true, 24) {
		t.Error("correction requires a submitted evaluation")
	}
}

func TestCompleteTrainingDayArithmetic(t *testing.T) {
	// 第 2 天完成培训，评估期为 5 天 ⇒ 第 7 天可评估
	completed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	p := &CertificationPathProgress{Status: StageTrainingInProgress}
	if !p.CompleteTraining(completed, 85, 5) {
		t.Fatal("CompleteTraining should succeed from training_in_progress")
	}

	want := time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC)
	if p.EvaluationAvailableDate == nil || !p.EvaluationAvailableDate.Equal(want) {
		t.Fatalf("evaluationAvailableDate = %v, want %v", p.EvaluationAvailableDate, want)
	}
	if p.TrainingScore == nil || *p.TrainingScore != 85 {
		t.Fatalf("trainingScore = %v, want 85", p.TrainingScore)
	}
	if p.Status != StageTrainingCompleted {
		t.Fatalf("status = %q, want %q", p.Status, StageTrainingCompleted)
	}
}

func TestCompleteTrainingZeroWaitIsImmediatelyAvailable(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	p := &CertificationPathProgress{Status: StageTrainingInProgress}
	p.CompleteTraining(now, 90, 0)
	if p.Status != StageEvaluationAvailable {
		t.Fatalf("status = %q, want %q with zero waiting period", p.Status, StageEvaluationAvailable)
	}
}

func TestRefreshStage(t *testing.T) {
	available := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	p := &CertificationPathProgress{Status: StageTrainingCompleted, EvaluationAvailableDate: &available}

	if p.RefreshStage(available.Add(-time.Hour)) {
		t.Error("should not advance before the available date")
	}
	if !p.RefreshStage(available) {
		t.Error("should advance once the available date is reached")
	}
	if p.Status != StageEvaluationAvailable {
		t.Fatalf("status = %q, want %q", p.Status, StageEvaluationAvailable)
	}
}

func TestCompleteEvaluation(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("passed grants habilitation with future expiry", func(t *testing.T) {
		p := &CertificationPathProgress{Status: StageEvaluationSubmitted}
		if !p.CompleteEvaluation(now, 82, true, 24) {
			t.Fatal("CompleteEvaluation should succeed")
		}
		if p.Status != StageHabilitationGranted {
			t.Fatalf("status = %q, want %q", p.Status, StageHabilitationGranted)
		}
		if p.HabilitationGrantedAt == nil || p.HabilitationExpiryDate == nil {
			t.Fatal("granted progress must carry grant and expiry dates")
		}
		if !p.HabilitationExpiryDate.After(*p.HabilitationGrantedAt) {
			t.Error("habilitation expiry must be after the grant date")
		}
	})

	t.Run("failed evaluation carries no habilitation dates", func(t *testing.T) {
		p := &CertificationPathProgress{Status: StageEvaluationSubmitted}
		p.CompleteEvaluation(now, 40, false, 24)
		if p.Status != StageEvaluationFailed {
			t.Fatalf("status = %q, want %q", p.Status, StageEvaluationFailed)
		}
		if p.HabilitationGrantedAt != nil || p.HabilitationExpiryDate != nil {
			t.Error("failed evaluation must not carry habilitation dates")
		}
	})

	t.Run("terminal progress is immutable", func(t *testing.T) {
		p := &CertificationPathProgress{Status: StageEvaluationFailed}
		if p.CompleteEvaluation(now, 95, true, 24) {
			t.Error("terminal progress must reject a second correction")
		}
	})
}

func TestHabilitationExpiringWithin(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	in10d := now.Add(10 * 24 * time.Hour)
	window := 30 * 24 * time.Hour

	p := &CertificationPathProgress{Status: StageHabilitationGranted, HabilitationExpiryDate: &in10d}
	if !p.HabilitationExpiringWithin(now, window) {
		t.Error("habilitation expiring in 10d should be within a 30d window")
	}
	p.Status = StageEvaluationFailed
	if p.HabilitationExpiringWithin(now, window) {
		t.Error("only granted habilitations can be expiring")
	}
}

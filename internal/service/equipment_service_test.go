package service

import (
	"errors"
	"testing"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"
)

func newEquipmentEnv(t *testing.T) *EquipmentService {
	t.Helper()
	return NewEquipmentService(repository.NewEquipmentRepository(newTestDB(t)))
}

func TestRecordCheckUpdatesCheckerAndDueDate(t *testing.T) {
	svc := newEquipmentEnv(t)

	e := &model.EquipmentCheck{
		Name:            "灭火器 A 区",
		SerialNumber:    "EXT-0042",
		FrequencyMonths: 6,
		LastCheckedAt:   time.Now().AddDate(-1, 0, 0),
	}
	if err := svc.Create(e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !e.IsOverdue(time.Now()) {
		t.Fatal("a year-old 6-month check must be overdue")
	}

	checked, err := svc.RecordCheck(e.ID, "emp-7")
	if err != nil {
		t.Fatalf("record check: %v", err)
	}
	if checked.CheckedBy != "emp-7" {
		t.Fatalf("checkedBy = %q, want emp-7", checked.CheckedBy)
	}
	if checked.IsOverdue(time.Now()) {
		t.Fatal("freshly checked equipment must not be overdue")
	}

	// 重新读取确认检查人已落库
	got, err := svc.Get(e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CheckedBy != "emp-7" {
		t.Fatalf("persisted checkedBy = %q, want emp-7", got.CheckedBy)
	}
}

func TestRecordCheckUnknownEquipment(t *testing.T) {
	svc := newEquipmentEnv(t)

	if _, err := svc.RecordCheck(999, "emp-7"); !errors.Is(err, util.ErrEquipmentNotFound) {
		t.Fatalf("err = %v, want ErrEquipmentNotFound", err)
	}
}

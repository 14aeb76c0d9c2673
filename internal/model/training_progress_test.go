package model

import (
	"testing"
	"time"
)

func TestMarkContentCompletedIdempotent(t *testing.T) {
	p := &TrainingProgress{Status: ProgressNotStarted}

	if !p.MarkContentCompleted(3) {
		t.Fatal("first mark should report a change")
	}
	if p.Status != ProgressInProgress {
		t.Fatalf("status = %q, want %q", p.Status, ProgressInProgress)
	}
	if p.MarkContentCompleted(3) {
		t.Fatal("repeated mark should be a no-op")
	}
	p.MarkContentCompleted(5)
	if len(p.CompletedContentIDs) != 2 {
		t.Fatalf("completed ids = %v, want 2 entries", p.CompletedContentIDs)
	}
}

func TestHasPassingLatest(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		results []AssessmentResult
		want    bool
	}{
		{"no results", nil, false},
		{"latest passed", []AssessmentResult{
			{Score: 40, Passed: false, RecordedAt: now},
			{Score: 90, Passed: true, RecordedAt: now},
		}, true},
		{"latest failed after pass", []AssessmentResult{
			{Score: 90, Passed: true, RecordedAt: now},
			{Score: 40, Passed: false, RecordedAt: now},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &TrainingProgress{AssessmentResults: tt.results}
			if got := p.HasPassingLatest(); got != tt.want {
				t.Errorf("HasPassingLatest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompleteSetsExpiry(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	p := &TrainingProgress{Status: ProgressInProgress}
	p.Complete(now, 12)
	if p.Status != ProgressCompleted {
		t.Fatalf("status = %q, want %q", p.Status, ProgressCompleted)
	}
	if p.ExpiresAt == nil || !p.ExpiresAt.Equal(now.AddDate(0, 12, 0)) {
		t.Fatalf("expiresAt = %v, want %v", p.ExpiresAt, now.AddDate(0, 12, 0))
	}

	// 有效期为 0 表示长期有效
	p2 := &TrainingProgress{Status: ProgressInProgress}
	p2.Complete(now, 0)
	if p2.ExpiresAt != nil {
		t.Fatalf("expiresAt = %v, want nil for non-expiring module", p2.ExpiresAt)
	}
}

func TestDerivedStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name      string
		status    string
		expiresAt *time.Time
		want      string
	}{
		{"in progress never expires", ProgressInProgress, &past, ProgressInProgress},
		{"completed and valid", ProgressCompleted, &future, ProgressCompleted},
		{"completed and expired", ProgressCompleted, &past, ProgressExpired},
		{"completed without expiry", ProgressCompleted, nil, ProgressCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &TrainingProgress{Status: tt.status, ExpiresAt: tt.expiresAt}
			if got := p.DerivedStatus(now); got != tt.want {
				t.Errorf("DerivedStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpiringWithin(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	in10d := now.Add(10 * 24 * time.Hour)
	in40d := now.Add(40 * 24 * time.Hour)
	window := 30 * 24 * time.Hour

	p := &TrainingProgress{Status: ProgressCompleted, ExpiresAt: &in10d}
	if !p.ExpiringWithin(now, window) {
		t.Error("expiry in 10d should be within a 30d window")
	}
	p.ExpiresAt = &in40d
	if p.ExpiringWithin(now, window) {
		t.Error("expiry in 40d should not be within a 30d window")
	}
	p.Status = ProgressInProgress
	p.ExpiresAt = &in10d
	if p.ExpiringWithin(now, window) {
		t.Error("non-completed progress should never be expiring")
	}
}

func TestResetClearsHistory(t *testing.T) {
	now := time.Now()
	p := &TrainingProgress{
		Status:              ProgressCompleted,
		CompletedContentIDs: []uint{1, 2},
		AssessmentResults:   []AssessmentResult{{Score: 90, Passed: true, RecordedAt: now}},
		CompletedAt:         &now,
		ExpiresAt:           &now,
	}
	p.Reset()
	if p.Status != ProgressNotStarted || p.CompletedContentIDs != nil || p.AssessmentResults != nil || p.CompletedAt != nil || p.ExpiresAt != nil {
		t.Fatalf("reset left state behind: %+v", p)
	}
}

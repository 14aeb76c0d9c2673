package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hse_training_backend/pkg/offline"
)

func TestWriteRemoteSuccess(t *testing.T) {
	store := newMemStore()
	p := NewPersistService(store, time.Second)

	result := p.Write(context.Background(), offline.KeyTrainingProgress, map[string]int{"v": 1}, func(context.Context) error {
		return nil
	})

	if result.Source != WriteRemote || !result.OK() {
		t.Fatalf("result = %+v, want remote success", result)
	}
	if store.count(offline.KeyTrainingProgress) != 0 {
		t.Error("successful remote write must not touch the offline store")
	}
}

func TestWriteTimeoutFallsBackOffline(t *testing.T) {
	store := newMemStore()
	p := NewPersistService(store, 30*time.Millisecond)

	block := make(chan struct{})
	defer close(block)

	result := p.Write(context.Background(), offline.KeyTrainingProgress, map[string]int{"v": 1}, func(rctx context.Context) error {
		select {
		case <-block:
			return nil
		case <-rctx.Done():
			return rctx.Err()
		}
	})

	if !result.Offline() {
		t.Fatalf("result = %+v, want offline success", result)
	}
	if got := store.count(offline.KeyTrainingProgress); got != 1 {
		t.Fatalf("offline records = %d, want exactly 1", got)
	}
}

func TestWriteRemoteErrorFallsBackOffline(t *testing.T) {
	store := newMemStore()
	p := NewPersistService(store, time.Second)

	result := p.Write(context.Background(), offline.KeyAssessmentSubmissions, map[string]int{"v": 1}, func(context.Context) error {
		return errors.New("connection refused")
	})

	if !result.Offline() {
		t.Fatalf("result = %+v, want offline success", result)
	}
	if got := store.count(offline.KeyAssessmentSubmissions); got != 1 {
		t.Fatalf("offline records = %d, want exactly 1", got)
	}
}

func TestSummarize(t *testing.T) {
	results := []WriteResult{
		{Source: WriteRemote},
		{Source: WriteLocal},
		{Source: WriteLocal},
		{Err: errors.New("boom")},
	}
	s := Summarize(results)
	if s.Total != 4 || s.RemoteCount != 1 || s.OfflineCount != 2 || s.FailedCount != 1 {
		t.Fatalf("summary = %+v", s)
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"hse_training_backend/pkg/logger"
	"hse_training_backend/pkg/monitoring"
	"hse_training_backend/pkg/offline"

	"go.uber.org/zap"
)

type WriteSource string

const (
	WriteRemote WriteSource = "remote"
	WriteLocal  WriteSource = "local"
)

// WriteResult 每次持久化操作的判别结果：成功 / 离线成功 / 失败。
// 离线成功不是错误，调用方据 Source 提示用户即可。
type WriteResult struct {
	Source WriteSource `json:"source"`
	Err    error       `json:"-"`
}

func (r WriteResult) OK() bool {
	return r.Err == nil
}

func (r WriteResult) Offline() bool {
	return r.Err == nil && r.Source == WriteLocal
}

// PersistService 持久化适配器：远程写在固定超时内完成则以远程为准，
// 超时或出错则把记录落到本地离线存储并按成功上报。
type PersistService struct {
	Local   offline.Store
	Timeout time.Duration
}

func NewPersistService(local offline.Store, timeout time.Duration) *PersistService {
	if timeout <= 0 {
		timeout = 2000 * time.Millisecond
	}
	return &PersistService{Local: local, Timeout: timeout}
}

// Write 在超时上限内尝试远程写。超时后迟到的远程结果被丢弃，
// 不会被二次应用（done 带缓冲，后台 goroutine 不泄漏）。
func (p *PersistService) Write(ctx context.Context, key string, record interface{}, remote func(context.Context) error) WriteResult {
	rctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- remote(rctx)
	}()

	select {
	case err := <-done:
		if err == nil {
			return WriteResult{Source: WriteRemote}
		}
		logger.Log.Warn("remote write failed, falling back to offline store",
			zap.String("key", key), zap.Error(err))
	case <-rctx.Done():
		logger.Log.Warn("remote write timed out, falling back to offline store",
			zap.String("key", key), zap.Duration("timeout", p.Timeout))
	}

	if err := p.Local.Append(context.WithoutCancel(ctx), key, record); err != nil {
		return WriteResult{Source: WriteLocal, Err: err}
	}
	monitoring.OfflineWrites.WithLabelValues(key).Inc()
	return WriteResult{Source: WriteLocal}
}

// ListLocal 读取固定键下的全部离线记录
func (p *PersistService) ListLocal(ctx context.Context, key string) ([]json.RawMessage, error) {
	return p.Local.List(ctx, key)
}

// BulkSummary 批量操作的逐条结果汇总
type BulkSummary struct {
	Total        int `json:"total"`
	RemoteCount  int `json:"remoteCount"`
	OfflineCount int `json:"offlineCount"`
	FailedCount  int `json:"failedCount"`
}

// Summarize 批量写结果计数；单条失败不影响其他条目
func Summarize(results []WriteResult) BulkSummary {
	s := BulkSummary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.FailedCount++
		case r.Source == WriteLocal:
			s.OfflineCount++
		default:
			s.RemoteCount++
		}
	}
	return s
}

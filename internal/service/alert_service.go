package service

import (
	"context"
	"fmt"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/pkg/logger"
	"hse_training_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// 告警派生的时间窗
const (
	trainingExpiringWindow     = 30 * 24 * time.Hour
	habilitationExpiringWindow = 30 * 24 * time.Hour
	lowComplianceThreshold     = 70
)

// AlertService 周期性重算到期/过期、低合规与设备检查告警，
// 新告警先与未读告警按 (type, message, subjectId) 去重再落库。
type AlertService struct {
	Repo          *repository.AlertRepository
	EmployeeRepo  *repository.EmployeeRepository
	EquipmentRepo *repository.EquipmentRepository
	Compliance    *ComplianceService
	Certification *CertificationService
}

func NewAlertService(
	repo *repository.AlertRepository,
	employeeRepo *repository.EmployeeRepository,
	equipmentRepo *repository.EquipmentRepository,
	compliance *ComplianceService,
	certification *CertificationService,
) *AlertService {
	return &AlertService{
		Repo:          repo,
		EmployeeRepo:  employeeRepo,
		EquipmentRepo: equipmentRepo,
		Compliance:    compliance,
		Certification: certification,
	}
}

func (s *AlertService) List(page, limit int, unreadOnly bool) ([]model.Alert, int64, error) {
	return s.Repo.List(page, limit, unreadOnly)
}

func (s *AlertService) MarkRead(id uint) error {
	return s.Repo.MarkRead(id)
}

func (s *AlertService) MarkAllRead() error {
	return s.Repo.MarkAllRead()
}

func (s *AlertService) candidateAlerts(ctx context.Context, now time.Time) ([]model.Alert, error) {
	var alerts []model.Alert

	employees, err := s.EmployeeRepo.ListAll()
	if err != nil {
		return nil, err
	}
	for i := range employees {
		e := &employees[i]
		record, err := s.Compliance.CheckEmployeeCompliance(ctx, e.ID)
		if err != nil {
			logger.Log.Warn("compliance check failed during alert recompute",
				zap.Uint("employeeId", e.ID), zap.Error(err))
			continue
		}

		for _, item := range record.Items {
			subject := fmt.Sprintf("%d:%d", e.ID, item.ModuleID)
			switch {
			case item.Status == model.ComplianceExpired:
				alerts = append(alerts, model.Alert{
					Type:      model.AlertTrainingExpired,
					Message:   fmt.Sprintf("%s 的培训 %s 已过期", e.Name, item.ModuleCode),
					SubjectID: subject,
					Severity:  model.SeverityCritical,
				})
			case item.Status == model.ComplianceCompleted && item.ExpiresAt != nil &&
				item.ExpiresAt.After(now) && item.ExpiresAt.Before(now.Add(trainingExpiringWindow)):
				alerts = append(alerts, model.Alert{
					Type:      model.AlertTrainingExpiring,
					Message:   fmt.Sprintf("%s 的培训 %s 将于 %s 到期", e.Name, item.ModuleCode, item.ExpiresAt.Format("2006-01-02")),
					SubjectID: subject,
					Severity:  model.SeverityWarning,
				})
			}
		}

		if record.TotalRequired > 0 && record.Rate < lowComplianceThreshold {
			alerts = append(alerts, model.Alert{
				Type:      model.AlertLowCompliance,
				Message:   fmt.Sprintf("%s 的合规率 %d%% 低于阈值", e.Name, record.Rate),
				SubjectID: fmt.Sprintf("%d", e.ID),
				Severity:  model.SeverityCritical,
			})
		}
	}

	granted, err := s.Certification.ListGrantedHabilitations()
	if err != nil {
		logger.Log.Warn("habilitation list failed during alert recompute", zap.Error(err))
	}
	for i := range granted {
		p := &granted[i]
		if p.HabilitationExpiringWithin(now, habilitationExpiringWindow) {
			alerts = append(alerts, model.Alert{
				Type:      model.AlertHabilitationExpiring,
				Message:   fmt.Sprintf("候选人 %s 的资格将于 %s 到期", p.CandidateID, p.HabilitationExpiryDate.Format("2006-01-02")),
				SubjectID: p.ID,
				Severity:  model.SeverityWarning,
			})
		}
	}

	checks, err := s.EquipmentRepo.ListAll()
	if err != nil {
		logger.Log.Warn("equipment list failed during alert recompute", zap.Error(err))
	}
	for i := range checks {
		c := &checks[i]
		if c.IsOverdue(now) {
			alerts = append(alerts, model.Alert{
				Type:      model.AlertEquipmentCheck,
				Message:   fmt.Sprintf("设备 %s 的周期检查已逾期", c.Name),
				SubjectID: fmt.Sprintf("%d", c.ID),
				Severity:  model.SeverityWarning,
			})
		}
	}

	return alerts, nil
}

// Recompute 一轮告警重算，返回新落库的告警数
func (s *AlertService) Recompute(ctx context.Context) (int, error) {
	now := time.Now()
	candidates, err := s.candidateAlerts(ctx, now)
	if err != nil {
		return 0, err
	}

	unread, err := s.Repo.ListUnread()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(unread))
	for i := range unread {
		seen[unread[i].DedupKey()] = true
	}

	emitted := 0
	for i := range candidates {
		a := &candidates[i]
		key := a.DedupKey()
		if seen[key] {
			continue
		}
		if err := s.Repo.Create(a); err != nil {
			logger.Log.Error("alert persist failed", zap.String("type", a.Type), zap.Error(err))
			continue
		}
		seen[key] = true
		monitoring.AlertsEmitted.WithLabelValues(a.Type).Inc()
		emitted++
	}
	return emitted, nil
}

// AlertRunner 告警重算的后台循环，独立可启停
type AlertRunner struct {
	Service  *AlertService
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewAlertRunner(service *AlertService, interval time.Duration) *AlertRunner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &AlertRunner{
		Service:  service,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (r *AlertRunner) Start() {
	go r.run()
}

func (r *AlertRunner) run() {
	defer close(r.doneCh)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			emitted, err := r.Service.Recompute(context.Background())
			if err != nil {
				logger.Log.Error("alert recompute failed", zap.Error(err))
				continue
			}
			if emitted > 0 {
				logger.Log.Info("alert recompute finished", zap.Int("emitted", emitted))
			}
		}
	}
}

// Stop 停止循环并等待当前一轮结束
func (r *AlertRunner) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

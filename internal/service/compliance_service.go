package service

import (
	"context"
	"math"
	"sort"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
)

// 整改清单的阈值：过期或低于 70 为高优先级，
// 缺失、7 天内到期或低于 90 为中优先级。
const (
	highRateThreshold   = 70
	mediumRateThreshold = 90
	expiringSoonWindow  = 7 * 24 * time.Hour
)

// ComplianceService 合规聚合：按员工/服务/岗位统计必修培训的完成率，
// 全部从进度跟踪器的合并读取视图派生，不落库。
type ComplianceService struct {
	EmployeeRepo *repository.EmployeeRepository
	TrainingRepo *repository.TrainingRepository
	Training     *TrainingService
}

func NewComplianceService(employeeRepo *repository.EmployeeRepository, trainingRepo *repository.TrainingRepository, training *TrainingService) *ComplianceService {
	return &ComplianceService{
		EmployeeRepo: employeeRepo,
		TrainingRepo: trainingRepo,
		Training:     training,
	}
}

// BuildComplianceRecord 纯函数：对员工岗位要求的每个模块，
// 按进度分类 completed（未过期）/ expired / missing。
// 无必修模块时合规率恒为 100。
func BuildComplianceRecord(employee *model.Employee, modules []model.TrainingModule, progress []model.TrainingProgress, now time.Time) *model.ComplianceRecord {
	byModule := make(map[uint]*model.TrainingProgress, len(progress))
	for i := range progress {
		byModule[progress[i].ModuleID] = &progress[i]
	}

	record := &model.ComplianceRecord{
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		Service:      employee.Service,
	}

	for i := range modules {
		m := &modules[i]
		if !m.RequiredFor(employee.JobRoles) {
			continue
		}
		record.TotalRequired++

		item := model.ComplianceItem{
			ModuleID:    m.ID,
			ModuleCode:  m.Code,
			ModuleTitle: m.Title,
		}

		p := byModule[m.ID]
		switch {
		case p == nil:
			item.Status = model.ComplianceMissing
			record.Missing++
		case p.IsExpired(now):
			item.Status = model.ComplianceExpired
			item.ExpiresAt = p.ExpiresAt
			record.Expired++
		case p.Status == model.ProgressCompleted:
			item.Status = model.ComplianceCompleted
			item.ExpiresAt = p.ExpiresAt
			record.Completed++
		default:
			// 进行中尚未取得有效资格，按缺失计
			item.Status = model.ComplianceMissing
			record.Missing++
		}
		record.Items = append(record.Items, item)
	}

	if record.TotalRequired == 0 {
		record.Rate = 100
	} else {
		record.Rate = int(math.Round(100 * float64(record.Completed) / float64(record.TotalRequired)))
	}
	return record
}

// CheckEmployeeCompliance 单个员工的合规清单
func (s *ComplianceService) CheckEmployeeCompliance(ctx context.Context, employeeID uint) (*model.ComplianceRecord, error) {
	employee, err := s.EmployeeRepo.FindByID(employeeID)
	if err != nil {
		return nil, err
	}
	modules, err := s.TrainingRepo.ListActiveModules()
	if err != nil {
		return nil, err
	}
	progress, err := s.Training.MergedEmployeeProgress(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return BuildComplianceRecord(employee, modules, progress, time.Now()), nil
}

func (s *ComplianceService) recordsFor(ctx context.Context, employees []model.Employee) ([]*model.ComplianceRecord, error) {
	modules, err := s.TrainingRepo.ListActiveModules()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	records := make([]*model.ComplianceRecord, 0, len(employees))
	for i := range employees {
		progress, err := s.Training.MergedEmployeeProgress(ctx, employees[i].ID)
		if err != nil {
			return nil, err
		}
		records = append(records, BuildComplianceRecord(&employees[i], modules, progress, now))
	}
	return records, nil
}

// GroupMean 组内员工合规率的非加权平均
func GroupMean(records []*model.ComplianceRecord) int {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.Rate
	}
	return int(math.Round(float64(sum) / float64(len(records))))
}

// ServiceCompliance 某服务（部门）的合规汇总
func (s *ComplianceService) ServiceCompliance(ctx context.Context, service string) (*model.GroupCompliance, error) {
	employees, err := s.EmployeeRepo.ListByService(service)
	if err != nil {
		return nil, err
	}
	records, err := s.recordsFor(ctx, employees)
	if err != nil {
		return nil, err
	}
	return &model.GroupCompliance{
		Group:         service,
		EmployeeCount: len(records),
		Rate:          GroupMean(records),
	}, nil
}

// RoleCompliance 某岗位的合规汇总
func (s *ComplianceService) RoleCompliance(ctx context.Context, jobRole string) (*model.GroupCompliance, error) {
	all, err := s.EmployeeRepo.ListAll()
	if err != nil {
		return nil, err
	}
	var members []model.Employee
	for _, e := range all {
		if e.HasJobRole(jobRole) {
			members = append(members, e)
		}
	}
	records, err := s.recordsFor(ctx, members)
	if err != nil {
		return nil, err
	}
	return &model.GroupCompliance{
		Group:         jobRole,
		EmployeeCount: len(records),
		Rate:          GroupMean(records),
	}, nil
}

// OverviewByService 全部服务的合规汇总
func (s *ComplianceService) OverviewByService(ctx context.Context) ([]model.GroupCompliance, error) {
	services, err := s.EmployeeRepo.ListServices()
	if err != nil {
		return nil, err
	}
	overview := make([]model.GroupCompliance, 0, len(services))
	for _, svc := range services {
		g, err := s.ServiceCompliance(ctx, svc)
		if err != nil {
			return nil, err
		}
		overview = append(overview, *g)
	}
	return overview, nil
}

// ClassifyPriority 纯函数：整改优先级与原因。
// high：有过期项或合规率 < 70；medium：有缺失项、7 天内到期项或合规率 < 90；
// 其余为 low（无需整改）。
func ClassifyPriority(record *model.ComplianceRecord, now time.Time) (string, []string) {
	var reasons []string

	expiringSoon := false
	for _, item := range record.Items {
		if item.Status == model.ComplianceCompleted && item.ExpiresAt != nil &&
			item.ExpiresAt.After(now) && item.ExpiresAt.Before(now.Add(expiringSoonWindow)) {
			expiringSoon = true
			break
		}
	}

	if record.Expired > 0 {
		reasons = append(reasons, "expired trainings")
	}
	if record.Rate < highRateThreshold {
		reasons = append(reasons, "compliance rate below 70")
	}
	if len(reasons) > 0 {
		return model.PriorityHigh, reasons
	}

	if record.Missing > 0 {
		reasons = append(reasons, "missing trainings")
	}
	if expiringSoon {
		reasons = append(reasons, "trainings expiring within 7 days")
	}
	if record.Rate < mediumRateThreshold {
		reasons = append(reasons, "compliance rate below 90")
	}
	if len(reasons) > 0 {
		return model.PriorityMedium, reasons
	}

	return model.PriorityLow, nil
}

// EmployeesRequiringAction 整改清单：high > medium，同级按合规率升序。
// low（无整改原因）不进入清单。
func (s *ComplianceService) EmployeesRequiringAction(ctx context.Context) ([]model.EmployeeAction, error) {
	employees, err := s.EmployeeRepo.ListAll()
	if err != nil {
		return nil, err
	}
	records, err := s.recordsFor(ctx, employees)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var actions []model.EmployeeAction
	for _, r := range records {
		priority, reasons := ClassifyPriority(r, now)
		if priority == model.PriorityLow {
			continue
		}
		actions = append(actions, model.EmployeeAction{
			EmployeeID: r.EmployeeID,
			Name:       r.EmployeeName,
			Service:    r.Service,
			Rate:       r.Rate,
			Priority:   priority,
			Reasons:    reasons,
		})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		ri, rj := model.PriorityRank(actions[i].Priority), model.PriorityRank(actions[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return actions[i].Rate < actions[j].Rate
	})
	return actions, nil
}

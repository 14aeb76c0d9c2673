package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/util"
	"hse_training_backend/pkg/logger"
	"hse_training_backend/pkg/offline"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssessmentService 测评与判分。
// 限时测评到期后强制交卷，自动判分与人工批改共用同一份提交记录。
type AssessmentService struct {
	Repo    *repository.AssessmentRepository
	Persist *PersistService

	mu         sync.Mutex
	countdowns map[string]*Countdown

	// CountdownInterval 倒计时检查间隔，零值用默认 1s
	CountdownInterval time.Duration
}

func NewAssessmentService(repo *repository.AssessmentRepository, persist *PersistService) *AssessmentService {
	return &AssessmentService{
		Repo:       repo,
		Persist:    persist,
		countdowns: make(map[string]*Countdown),
	}
}

// ---- 测评管理 ----

func (s *AssessmentService) CreateAssessment(a *model.Assessment) error {
	return s.Repo.CreateAssessment(a)
}

func (s *AssessmentService) GetAssessment(id uint) (*model.Assessment, error) {
	a, err := s.Repo.FindAssessmentByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssessmentNotFound
	}
	return a, err
}

func (s *AssessmentService) ListAssessments(page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.ListAssessments(page, limit)
}

func (s *AssessmentService) Publish(id uint) (*model.Assessment, error) {
	a, err := s.GetAssessment(id)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished {
		now := time.Now()
		a.IsPublished = true
		a.PublishedAt = &now
		if err := s.Repo.UpdateAssessment(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *AssessmentService) AddQuestion(q *model.AssessmentQuestion) error {
	if _, err := s.GetAssessment(q.AssessmentID); err != nil {
		return err
	}
	return s.Repo.CreateQuestion(q)
}

func (s *AssessmentService) ListQuestions(assessmentID uint) ([]model.AssessmentQuestion, error) {
	return s.Repo.ListQuestions(assessmentID)
}

// ---- 判分 ----

// GradeAnswers 自动判分：开放题不参与，其余题目按原始答案比对。
// 得分 = round(100 × 答对数 / 可自动判分题数)；全部为开放题时得 0 分，
// 等待人工批改给出权威分数。返回是否存在开放题。
func GradeAnswers(questions []model.AssessmentQuestion, answers map[string]string) (int, bool) {
	autoTotal, correct := 0, 0
	hasOpen := false
	for i := range questions {
		q := &questions[i]
		if q.IsOpen() {
			hasOpen = true
			continue
		}
		autoTotal++
		if q.MatchesAnswer(answers[strconv.FormatUint(uint64(q.ID), 10)]) {
			correct++
		}
	}
	if autoTotal == 0 {
		return 0, hasOpen
	}
	return int(math.Round(100 * float64(correct) / float64(autoTotal))), hasOpen
}

// ---- 提交记录读取（合并远程 + 离线） ----

func (s *AssessmentService) findSubmission(ctx context.Context, id string) (*model.AssessmentSubmission, error) {
	var found *model.AssessmentSubmission

	sub, err := s.Repo.FindSubmissionByID(id)
	if err == nil {
		sub.Source = string(WriteRemote)
		found = sub
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("remote submission read failed, serving offline records only",
			zap.String("submissionId", id), zap.Error(err))
	}

	raws, err := s.Persist.ListLocal(ctx, offline.KeyAssessmentSubmissions)
	if err != nil {
		if found != nil {
			return found, nil
		}
		return nil, err
	}
	// 离线记录是更晚的写入，覆盖远程版本
	for _, raw := range raws {
		var local model.AssessmentSubmission
		if err := json.Unmarshal(raw, &local); err != nil {
			continue
		}
		if local.ID == id {
			local.Source = string(WriteLocal)
			found = &local
		}
	}

	if found == nil {
		return nil, util.ErrSubmissionNotFound
	}
	return found, nil
}

func (s *AssessmentService) ListCandidateSubmissions(ctx context.Context, candidateID string) ([]model.AssessmentSubmission, error) {
	byID := make(map[string]model.AssessmentSubmission)
	var order []string

	remote, err := s.Repo.ListSubmissionsByCandidate(candidateID)
	if err != nil {
		logger.Log.Warn("remote submission list failed, serving offline records only",
			zap.String("candidateId", candidateID), zap.Error(err))
	}
	for _, sub := range remote {
		sub.Source = string(WriteRemote)
		byID[sub.ID] = sub
		order = append(order, sub.ID)
	}

	raws, err := s.Persist.ListLocal(ctx, offline.KeyAssessmentSubmissions)
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		var local model.AssessmentSubmission
		if err := json.Unmarshal(raw, &local); err != nil {
			continue
		}
		if local.CandidateID != candidateID {
			continue
		}
		if _, seen := byID[local.ID]; !seen {
			order = append(order, local.ID)
		}
		local.Source = string(WriteLocal)
		byID[local.ID] = local
	}

	merged := make([]model.AssessmentSubmission, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged, nil
}

func (s *AssessmentService) persistSubmission(ctx context.Context, sub *model.AssessmentSubmission, existsRemotely bool) WriteResult {
	return s.Persist.Write(ctx, offline.KeyAssessmentSubmissions, sub, func(rctx context.Context) error {
		if existsRemotely {
			return s.Repo.SaveSubmission(rctx, sub)
		}
		return s.Repo.CreateSubmission(rctx, sub)
	})
}

// ---- 提交流程 ----

// AssignToCandidate 给候选人下发一次测评。同一测评同一候选人
// 同时只允许一条未交卷的提交记录。
func (s *AssessmentService) AssignToCandidate(ctx context.Context, assessmentID uint, candidateID string) (*model.AssessmentSubmission, WriteResult, error) {
	assessment, err := s.GetAssessment(assessmentID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if !assessment.IsPublished {
		return nil, WriteResult{}, util.ErrNotPublished
	}

	if _, err := s.Repo.FindOpenSubmission(assessmentID, candidateID); err == nil {
		return nil, WriteResult{}, util.ErrInvalidState
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, WriteResult{}, err
	}

	attempts, err := s.Repo.CountAttempts(assessmentID, candidateID)
	if err != nil {
		return nil, WriteResult{}, err
	}

	sub := &model.AssessmentSubmission{
		UUIDBase:     model.UUIDBase{ID: model.GenerateUUID()},
		AssessmentID: assessmentID,
		CandidateID:  candidateID,
		Status:       model.SubmissionAssigned,
		Attempt:      int(attempts) + 1,
	}
	result := s.persistSubmission(ctx, sub, false)
	return sub, result, result.Err
}

// StartAttempt 开始答题。限时测评同时启动倒计时，
// 到期未交卷则用已保存的答案强制交卷并标记超时。
func (s *AssessmentService) StartAttempt(ctx context.Context, submissionID string) (*model.AssessmentSubmission, WriteResult, error) {
	sub, err := s.findSubmission(ctx, submissionID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if sub.Status != model.SubmissionAssigned {
		return nil, WriteResult{}, util.ErrInvalidState
	}
	assessment, err := s.GetAssessment(sub.AssessmentID)
	if err != nil {
		return nil, WriteResult{}, err
	}

	now := time.Now()
	sub.Status = model.SubmissionStarted
	sub.StartedAt = &now

	result := s.persistSubmission(ctx, sub, sub.Source == string(WriteRemote))
	if result.Err != nil {
		return nil, result, result.Err
	}

	if deadline := sub.Deadline(assessment.TimeLimit); deadline != nil {
		s.startCountdown(sub.ID, *deadline)
	}
	return sub, result, nil
}

func (s *AssessmentService) startCountdown(submissionID string, deadline time.Time) {
	interval := s.CountdownInterval
	if interval <= 0 {
		interval = time.Second
	}
	cd := NewCountdownWithInterval(deadline, interval, func() {
		if err := s.ExpireAttempt(context.Background(), submissionID); err != nil &&
			!errors.Is(err, util.ErrAlreadyFinalized) {
			logger.Log.Error("timed attempt finalization failed",
				zap.String("submissionId", submissionID), zap.Error(err))
		}
	})

	s.mu.Lock()
	s.countdowns[submissionID] = cd
	s.mu.Unlock()
	cd.Start()
}

// SaveAnswers 答题过程中的增量保存，交卷前可覆盖
func (s *AssessmentService) SaveAnswers(ctx context.Context, submissionID string, answers map[string]string) (*model.AssessmentSubmission, WriteResult, error) {
	sub, err := s.findSubmission(ctx, submissionID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if sub.Status != model.SubmissionStarted {
		return nil, WriteResult{}, util.ErrAttemptNotStarted
	}

	if sub.Answers == nil {
		sub.Answers = make(map[string]string)
	}
	for k, v := range answers {
		sub.Answers[k] = v
	}
	result := s.persistSubmission(ctx, sub, sub.Source == string(WriteRemote))
	return sub, result, result.Err
}

// SubmitAttempt 主动交卷。与倒计时到期的强制交卷互斥，
// 已定稿的提交不再二次判分。
func (s *AssessmentService) SubmitAttempt(ctx context.Context, submissionID string, answers map[string]string) (*model.AssessmentSubmission, WriteResult, error) {
	return s.finalizeAttempt(ctx, submissionID, answers, false)
}

// ExpireAttempt 倒计时到期：用已保存的答案强制交卷并标记超时
func (s *AssessmentService) ExpireAttempt(ctx context.Context, submissionID string) error {
	_, _, err := s.finalizeAttempt(ctx, submissionID, nil, true)
	return err
}

func (s *AssessmentService) finalizeAttempt(ctx context.Context, submissionID string, answers map[string]string, timedOut bool) (*model.AssessmentSubmission, WriteResult, error) {
	// 串行化定稿：主动交卷与倒计时到期恰好定稿一次
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.findSubmission(ctx, submissionID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if sub.IsFinalized() || sub.Status == model.SubmissionSubmitted {
		return nil, WriteResult{}, util.ErrAlreadyFinalized
	}
	if sub.Status != model.SubmissionStarted {
		return nil, WriteResult{}, util.ErrAttemptNotStarted
	}

	if cd := s.countdowns[submissionID]; cd != nil {
		cd.Stop()
		delete(s.countdowns, submissionID)
	}

	assessment, err := s.GetAssessment(sub.AssessmentID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	questions, err := s.Repo.ListQuestions(sub.AssessmentID)
	if err != nil {
		return nil, WriteResult{}, err
	}

	if sub.Answers == nil {
		sub.Answers = make(map[string]string)
	}
	for k, v := range answers {
		sub.Answers[k] = v
	}

	score, hasOpen := GradeAnswers(questions, sub.Answers)
	now := time.Now()
	sub.Status = model.SubmissionSubmitted
	sub.SubmittedAt = &now
	sub.Score = &score
	sub.IsTimeout = timedOut
	if !hasOpen {
		// 无开放题时自动分即权威分
		passed := score >= assessment.EffectivePassingScore()
		sub.IsPassed = &passed
	}

	result := s.persistSubmission(ctx, sub, sub.Source == string(WriteRemote))
	return sub, result, result.Err
}

// CorrectionRequest 人工批改：逐题给分与评语
type CorrectionRequest struct {
	Points   map[string]int    `json:"points" binding:"required"`
	Comments map[string]string `json:"comments"`
}

// Correct 人工批改交卷后的提交，重算权威分数。
// 得分 = round(100 × 获得分值 / 总分值)，未配置分值的题按 1 分计。
func (s *AssessmentService) Correct(ctx context.Context, submissionID string, correctorID uint, req CorrectionRequest) (*model.AssessmentSubmission, WriteResult, error) {
	sub, err := s.findSubmission(ctx, submissionID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	if sub.Status != model.SubmissionSubmitted {
		return nil, WriteResult{}, util.ErrNotAwaitingCorrect
	}
	assessment, err := s.GetAssessment(sub.AssessmentID)
	if err != nil {
		return nil, WriteResult{}, err
	}
	questions, err := s.Repo.ListQuestions(sub.AssessmentID)
	if err != nil {
		return nil, WriteResult{}, err
	}

	totalPoints, earned := 0, 0
	for i := range questions {
		q := &questions[i]
		points := q.Points
		if points <= 0 {
			points = 1
		}
		totalPoints += points

		key := strconv.FormatUint(uint64(q.ID), 10)
		if awarded, ok := req.Points[key]; ok {
			if awarded > points {
				awarded = points
			}
			if awarded > 0 {
				earned += awarded
			}
		}
	}

	score := 0
	if totalPoints > 0 {
		score = int(math.Round(100 * float64(earned) / float64(totalPoints)))
	}
	passed := score >= assessment.EffectivePassingScore()
	now := time.Now()

	sub.Status = model.SubmissionCorrected
	sub.Score = &score
	sub.IsPassed = &passed
	sub.CorrectorID = &correctorID
	sub.Comments = req.Comments
	sub.CorrectedAt = &now

	result := s.persistSubmission(ctx, sub, sub.Source == string(WriteRemote))
	return sub, result, result.Err
}

// StopAllCountdowns 关停所有进行中的倒计时，服务退出时调用
func (s *AssessmentService) StopAllCountdowns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cd := range s.countdowns {
		cd.Stop()
		delete(s.countdowns, id)
	}
}

package repository

import (
	"context"

	"hse_training_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateAssessment(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) UpdateAssessment(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) FindAssessmentByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) ListAssessments(page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64
	query := r.DB.Model(&model.Assessment{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) CreateQuestion(q *model.AssessmentQuestion) error {
	return r.DB.Create(q).Error
}

func (r *AssessmentRepository) UpdateQuestion(q *model.AssessmentQuestion) error {
	return r.DB.Save(q).Error
}

func (r *AssessmentRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.AssessmentQuestion{}, id).Error
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.AssessmentQuestion, error) {
	var q model.AssessmentQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *AssessmentRepository) ListQuestions(assessmentID uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	err := r.DB.Where("assessment_id = ?", assessmentID).Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}

// Submissions

func (r *AssessmentRepository) CreateSubmission(ctx context.Context, s *model.AssessmentSubmission) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *AssessmentRepository) SaveSubmission(ctx context.Context, s *model.AssessmentSubmission) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *AssessmentRepository) FindSubmissionByID(id string) (*model.AssessmentSubmission, error) {
	var s model.AssessmentSubmission
	err := r.DB.Where("id = ?", id).First(&s).Error
	return &s, err
}

// FindOpenSubmission 查找候选人在该评估上尚未定稿的作答
func (r *AssessmentRepository) FindOpenSubmission(assessmentID uint, candidateID string) (*model.AssessmentSubmission, error) {
	var s model.AssessmentSubmission
	err := r.DB.Where("assessment_id = ? AND candidate_id = ? AND status IN ?",
		assessmentID, candidateID,
		[]string{model.SubmissionAssigned, model.SubmissionStarted}).
		First(&s).Error
	return &s, err
}

func (r *AssessmentRepository) CountAttempts(assessmentID uint, candidateID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.AssessmentSubmission{}).
		Where("assessment_id = ? AND candidate_id = ?", assessmentID, candidateID).
		Count(&count).Error
	return count, err
}

func (r *AssessmentRepository) ListSubmissionsByCandidate(candidateID string) ([]model.AssessmentSubmission, error) {
	var ss []model.AssessmentSubmission
	err := r.DB.Where("candidate_id = ?", candidateID).Order("created_at desc").Find(&ss).Error
	return ss, err
}

func (r *AssessmentRepository) ListSubmissionsByStatus(assessmentID uint, status string, page, limit int) ([]model.AssessmentSubmission, int64, error) {
	var ss []model.AssessmentSubmission
	var total int64
	query := r.DB.Model(&model.AssessmentSubmission{}).Where("assessment_id = ?", assessmentID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

package repository

import (
	"context"

	"hse_training_backend/internal/model"

	"gorm.io/gorm"
)

type CertificationRepository struct {
	DB *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{DB: db}
}

// Path catalog

func (r *CertificationRepository) CreatePath(p *model.CertificationPath) error {
	return r.DB.Create(p).Error
}

func (r *CertificationRepository) FindPathByID(id uint) (*model.CertificationPath, error) {
	var p model.CertificationPath
	err := r.DB.First(&p, id).Error
	return &p, err
}

func (r *CertificationRepository) ListPaths(page, limit int) ([]model.CertificationPath, int64, error) {
	var ps []model.CertificationPath
	var total int64
	query := r.DB.Model(&model.CertificationPath{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("code asc").Offset(offset).Limit(limit).Find(&ps).Error
	return ps, total, err
}

// Progress records

func (r *CertificationRepository) CreateProgress(ctx context.Context, p *model.CertificationPathProgress) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *CertificationRepository) SaveProgress(ctx context.Context, p *model.CertificationPathProgress) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *CertificationRepository) FindProgressByID(id string) (*model.CertificationPathProgress, error) {
	var p model.CertificationPathProgress
	err := r.DB.Where("id = ?", id).First(&p).Error
	return &p, err
}

// FindActiveProgress 查找 (path, candidate) 的活跃（非终态）进度
func (r *CertificationRepository) FindActiveProgress(pathID uint, candidateID string) (*model.CertificationPathProgress, error) {
	var p model.CertificationPathProgress
	err := r.DB.Where("path_id = ? AND candidate_id = ? AND status NOT IN ?",
		pathID, candidateID,
		[]string{model.StageHabilitationGranted, model.StageEvaluationFailed}).
		First(&p).Error
	return &p, err
}

func (r *CertificationRepository) ListProgressByCandidate(candidateID string) ([]model.CertificationPathProgress, error) {
	var ps []model.CertificationPathProgress
	err := r.DB.Where("candidate_id = ?", candidateID).Order("assigned_at desc").Find(&ps).Error
	return ps, err
}

func (r *CertificationRepository) ListProgressByPath(pathID uint, page, limit int) ([]model.CertificationPathProgress, int64, error) {
	var ps []model.CertificationPathProgress
	var total int64
	query := r.DB.Model(&model.CertificationPathProgress{}).Where("path_id = ?", pathID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("assigned_at desc").Offset(offset).Limit(limit).Find(&ps).Error
	return ps, total, err
}

func (r *CertificationRepository) ListProgressByStatus(statuses []string) ([]model.CertificationPathProgress, error) {
	var ps []model.CertificationPathProgress
	err := r.DB.Where("status IN ?", statuses).Find(&ps).Error
	return ps, err
}

package controller

import (
	"path/filepath"
	"strconv"
	"strings"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificationController struct {
	Service *service.CertificationService
	Storage *service.StorageService
}

func NewCertificationController(svc *service.CertificationService, storage *service.StorageService) *CertificationController {
	return &CertificationController{Service: svc, Storage: storage}
}

// ---- 路径管理 ----

// @Summary 创建认证路径
// @Tags 认证路径
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CertificationPath true "路径信息"
// @Success 201 {object} util.Response{data=model.CertificationPath}
// @Router /api/manager/certification/paths [post]
func (c *CertificationController) CreatePath(ctx *gin.Context) {
	var p model.CertificationPath
	if err := ctx.ShouldBindJSON(&p); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.CreatePath(&p); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, p)
}

// @Summary 认证路径列表
// @Tags 认证路径
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/certification/paths [get]
func (c *CertificationController) ListPaths(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)

	paths, total, err := c.Service.ListPaths(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: paths, Total: total, Page: page, Limit: limit})
}

// ---- 指派 ----

func certProgressResponse(p *model.CertificationPathProgress, result service.WriteResult) gin.H {
	return gin.H{
		"progress": p,
		"source":   result.Source,
	}
}

// AssignCandidateRequest 单个候选人指派
type AssignCandidateRequest struct {
	CandidateID   string `json:"candidateId" binding:"required"`
	CandidateType string `json:"candidateType" binding:"omitempty,oneof=employee external"`
}

// @Summary 指派候选人到认证路径
// @Tags 认证路径
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "路径ID"
// @Param body body AssignCandidateRequest true "候选人"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "已有活跃的认证进度"
// @Router /api/manager/certification/paths/{id}/assign [post]
func (c *CertificationController) Assign(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req AssignCandidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p, result, err := c.Service.AssignToCandidate(ctx.Request.Context(), uint(id), req.CandidateID, req.CandidateType, claims.EmployeeID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Created(ctx, certProgressResponse(p, result))
}

// BulkAssignRequest 批量指派
type BulkAssignRequest struct {
	CandidateIDs  []string `json:"candidateIds" binding:"required,min=1"`
	CandidateType string   `json:"candidateType" binding:"omitempty,oneof=employee external"`
}

// @Summary 批量指派候选人
// @Description 逐个候选人独立指派，单个失败不影响其他人；返回逐条结果与汇总
// @Tags 认证路径
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "路径ID"
// @Param body body BulkAssignRequest true "候选人列表"
// @Success 200 {object} util.Response{data=service.BulkAssignResult}
// @Router /api/manager/certification/paths/{id}/bulk-assign [post]
func (c *CertificationController) BulkAssign(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req BulkAssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.BulkAssign(ctx.Request.Context(), uint(id), req.CandidateIDs, req.CandidateType, claims.EmployeeID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ---- 阶段推进 ----

// @Summary 认证进度详情
// @Tags 认证路径
// @Produce json
// @Security BearerAuth
// @Param id path string true "进度ID"
// @Success 200 {object} util.Response{data=model.CertificationPathProgress}
// @Failure 404 {object} util.Response
// @Router /api/certification/progress/{id} [get]
func (c *CertificationController) GetProgress(ctx *gin.Context) {
	p, err := c.Service.GetProgress(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 候选人的认证进度
// @Tags 认证路径
// @Produce json
// @Security BearerAuth
// @Param candidateId path string true "候选人ID"
// @Success 200 {object} util.Response
// @Router /api/certification/candidates/{candidateId}/progress [get]
func (c *CertificationController) CandidateProgress(ctx *gin.Context) {
	list, err := c.Service.ListCandidateProgress(ctx.Request.Context(), ctx.Param("candidateId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 开始培训阶段
// @Tags 认证路径
// @Produce json
// @Security BearerAuth
// @Param id path string true "进度ID"
// @Success 200 {object} util.Response
// @Router /api/certification/progress/{id}/start-training [post]
func (c *CertificationController) StartTraining(ctx *gin.Context) {
	p, result, err := c.Service.StartTraining(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, certProgressResponse(p, result))
}

// CompleteTrainingRequest 培训成绩
type CompleteTrainingRequest struct {
	TrainingScore int `json:"trainingScore" binding:"min=0,max=100"`
}

// @Summary 完成培训阶段
// @Description 按路径配置的整天数推算评估可用日期
// @Tags 认证路径
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "进度ID"
// @Param body body CompleteTrainingRequest true "培训成绩"
// @Success 200 {object} util.Response
// @Router /api/certification/progress/{id}/complete-training [post]
func (c *CertificationController) CompleteTraining(ctx *gin.Context) {
	var req CompleteTrainingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p, result, err := c.Service.CompleteTraining(ctx.Request.Context(), ctx.Param("id"), req.TrainingScore)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, certProgressResponse(p, result))
}

// @Summary 开始评估
// @Description 评估可用日期未到时返回 422
// @Tags 认证路径
// @Produce json
// @Security BearerAuth
// @Param id path string true "进度ID"
// @Success 200 {object} util.Response
// @Router /api/certification/progress/{id}/start-evaluation [post]
func (c *CertificationController) StartEvaluation(ctx *gin.Context) {
	p, result, err := c.Service.StartEvaluation(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, certProgressResponse(p, result))
}

// @Summary 标记评估已交卷
// @Tags 认证路径
// @Produce json
// @Security BearerAuth
// @Param id path string true "进度ID"
// @Success 200 {object} util.Response
// @Router /api/certification/progress/{id}/submit-evaluation [post]
func (c *CertificationController) SubmitEvaluation(ctx *gin.Context) {
	p, result, err := c.Service.MarkEvaluationSubmitted(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, certProgressResponse(p, result))
}

// CompleteEvaluationRequest 评估成绩
type CompleteEvaluationRequest struct {
	Score int `json:"score" binding:"min=0,max=100"`
}

// @Summary 完成评估批改
// @Description 通过则授予资格并推算到期日，未通过进入终态
// @Tags 认证路径
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "进度ID"
// @Param body body CompleteEvaluationRequest true "评估成绩"
// @Success 200 {object} util.Response
// @Router /api/manager/certification/progress/{id}/complete-evaluation [post]
func (c *CertificationController) CompleteEvaluation(ctx *gin.Context) {
	var req CompleteEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p, result, err := c.Service.CompleteEvaluation(ctx.Request.Context(), ctx.Param("id"), req.Score)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, certProgressResponse(p, result))
}

// @Summary 上传资格证书附件
// @Tags 认证路径
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "进度ID"
// @Param file formData file true "证书文件（PDF 或图片）"
// @Success 200 {object} util.Response
// @Router /api/manager/certification/progress/{id}/certificate [post]
func (c *CertificationController) UploadCertificate(ctx *gin.Context) {
	progressID := ctx.Param("id")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !util.IsAllowedCertificateExtension(ext) {
		util.BadRequest(ctx, "unsupported file extension")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	contentType, err := util.ValidateMimeType(src, util.AllowedCertificateTypes)
	src.Close()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 校验消耗了读取位置，重新打开再上传
	src, err = fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.Storage.UploadCertificate(ctx.Request.Context(), progressID, ext, contentType, src, fileHeader.Size)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	p, result, err := c.Service.AttachCertificate(ctx.Request.Context(), progressID, url)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, certProgressResponse(p, result))
}

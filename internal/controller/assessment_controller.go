package controller

import (
	"strconv"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// ---- 测评管理 ----

// @Summary 创建测评
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.Assessment true "测评信息"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Router /api/manager/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	var a model.Assessment
	if err := ctx.ShouldBindJSON(&a); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.CreateAssessment(&a); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary 测评列表
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/manager/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)

	assessments, total, err := c.Service.ListAssessments(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: assessments, Total: total, Page: page, Limit: limit})
}

// @Summary 测评详情（含题目）
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	assessment, err := c.Service.GetAssessment(uint(id))
	if err != nil {
		writeError(ctx, err)
		return
	}
	questions, err := c.Service.ListQuestions(assessment.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"assessment": assessment,
		"questions":  questions,
	})
}

// @Summary 发布测评
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/manager/assessments/{id}/publish [post]
func (c *AssessmentController) Publish(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	assessment, err := c.Service.Publish(uint(id))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, assessment)
}

// @Summary 添加题目
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body model.AssessmentQuestion true "题目信息"
// @Success 201 {object} util.Response{data=model.AssessmentQuestion}
// @Router /api/manager/assessments/{id}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var q model.AssessmentQuestion
	if err := ctx.ShouldBindJSON(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q.AssessmentID = uint(id)

	if err := c.Service.AddQuestion(&q); err != nil {
		writeError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// ---- 作答流程 ----

func submissionResponse(sub *model.AssessmentSubmission, result service.WriteResult) gin.H {
	return gin.H{
		"submission": sub,
		"source":     result.Source,
	}
}

// AssignRequest 下发测评
type AssignRequest struct {
	CandidateID string `json:"candidateId" binding:"required"`
}

// @Summary 给候选人下发测评
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body AssignRequest true "候选人"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response "测评未发布"
// @Failure 422 {object} util.Response "已有未交卷的作答"
// @Router /api/manager/assessments/{id}/assign [post]
func (c *AssessmentController) Assign(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, result, err := c.Service.AssignToCandidate(ctx.Request.Context(), uint(id), req.CandidateID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Created(ctx, submissionResponse(sub, result))
}

// @Summary 开始作答
// @Description 限时测评同时启动倒计时，到期自动交卷
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param id path string true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/submissions/{id}/start [post]
func (c *AssessmentController) StartAttempt(ctx *gin.Context) {
	sub, result, err := c.Service.StartAttempt(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, submissionResponse(sub, result))
}

// AnswersRequest 作答内容
type AnswersRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// @Summary 保存作答（不交卷）
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作答ID"
// @Param body body AnswersRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/submissions/{id}/answers [put]
func (c *AssessmentController) SaveAnswers(ctx *gin.Context) {
	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, result, err := c.Service.SaveAnswers(ctx.Request.Context(), ctx.Param("id"), req.Answers)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, submissionResponse(sub, result))
}

// @Summary 交卷
// @Description 自动判分；与倒计时到期的强制交卷互斥
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作答ID"
// @Param body body AnswersRequest true "答案"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response "已定稿"
// @Router /api/submissions/{id}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, result, err := c.Service.SubmitAttempt(ctx.Request.Context(), ctx.Param("id"), req.Answers)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, submissionResponse(sub, result))
}

// @Summary 人工批改
// @Description 逐题给分，重算权威分数与是否通过
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作答ID"
// @Param body body service.CorrectionRequest true "批改内容"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response "未处于待批改状态"
// @Router /api/manager/submissions/{id}/correct [post]
func (c *AssessmentController) Correct(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CorrectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, result, err := c.Service.Correct(ctx.Request.Context(), ctx.Param("id"), claims.EmployeeID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, submissionResponse(sub, result))
}

// @Summary 候选人的作答记录
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param candidateId path string true "候选人ID"
// @Success 200 {object} util.Response
// @Router /api/manager/candidates/{candidateId}/submissions [get]
func (c *AssessmentController) CandidateSubmissions(ctx *gin.Context) {
	subs, err := c.Service.ListCandidateSubmissions(ctx.Request.Context(), ctx.Param("candidateId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

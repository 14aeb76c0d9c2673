package controller

import (
	"strconv"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TrainingController struct {
	Service *service.TrainingService
}

func NewTrainingController(svc *service.TrainingService) *TrainingController {
	return &TrainingController{Service: svc}
}

// ---- 培训目录 ----

// @Summary 创建培训模块
// @Tags 培训目录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.TrainingModule true "模块信息"
// @Success 201 {object} util.Response{data=model.TrainingModule}
// @Router /api/manager/training/modules [post]
func (c *TrainingController) CreateModule(ctx *gin.Context) {
	var m model.TrainingModule
	if err := ctx.ShouldBindJSON(&m); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.CreateModule(&m); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// @Summary 培训模块列表
// @Tags 培训目录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/training/modules [get]
func (c *TrainingController) ListModules(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)

	modules, total, err := c.Service.ListModules(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: modules, Total: total, Page: page, Limit: limit})
}

// @Summary 培训模块详情（含内容模块）
// @Tags 培训目录
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/training/modules/{id} [get]
func (c *TrainingController) GetModule(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	module, err := c.Service.GetModule(uint(id))
	if err != nil {
		writeError(ctx, err)
		return
	}
	contents, err := c.Service.ListContentModules(module.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"module":         module,
		"contentModules": contents,
	})
}

// @Summary 给培训模块添加内容模块
// @Tags 培训目录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param body body model.ContentModule true "内容模块"
// @Success 201 {object} util.Response{data=model.ContentModule}
// @Router /api/manager/training/modules/{id}/contents [post]
func (c *TrainingController) AddContentModule(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var cm model.ContentModule
	if err := ctx.ShouldBindJSON(&cm); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	cm.ModuleID = uint(id)

	if err := c.Service.AddContentModule(&cm); err != nil {
		writeError(ctx, err)
		return
	}
	util.Created(ctx, cm)
}

// ---- 培训进度 ----

// progressResponse 写操作的响应：进度 + 写入来源（remote / local）
func progressResponse(p *model.TrainingProgress, result service.WriteResult) gin.H {
	return gin.H{
		"progress": p,
		"source":   result.Source,
	}
}

// @Summary 开始培训模块
// @Description 幂等：已开始时返回现有进度
// @Tags 培训进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/training/modules/{id}/start [post]
func (c *TrainingController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	moduleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	p, result, err := c.Service.Start(ctx.Request.Context(), claims.EmployeeID, uint(moduleID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, progressResponse(p, result))
}

// @Summary 标记内容模块已读
// @Tags 培训进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param contentId path int true "内容模块ID"
// @Success 200 {object} util.Response
// @Router /api/training/modules/{id}/contents/{contentId}/complete [post]
func (c *TrainingController) CompleteContentModule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	moduleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}
	contentID, err := strconv.Atoi(ctx.Param("contentId"))
	if err != nil {
		util.BadRequest(ctx, "invalid content id")
		return
	}

	p, result, err := c.Service.CompleteContentModule(ctx.Request.Context(), claims.EmployeeID, uint(moduleID), uint(contentID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, progressResponse(p, result))
}

// RecordResultRequest 模块内测验结果
type RecordResultRequest struct {
	Score int `json:"score" binding:"min=0,max=100"`
}

// @Summary 记录模块内测验结果
// @Tags 培训进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param body body RecordResultRequest true "测验结果"
// @Success 200 {object} util.Response
// @Router /api/training/modules/{id}/results [post]
func (c *TrainingController) RecordAssessmentResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	moduleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	var req RecordResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p, result, err := c.Service.RecordAssessmentResult(ctx.Request.Context(), claims.EmployeeID, uint(moduleID), req.Score)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, progressResponse(p, result))
}

// @Summary 完成培训
// @Description 要求全部内容模块已读且最近一次测验通过
// @Tags 培训进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response "状态不允许"
// @Router /api/training/modules/{id}/complete [post]
func (c *TrainingController) CompleteTraining(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	moduleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	p, result, err := c.Service.CompleteTraining(ctx.Request.Context(), claims.EmployeeID, uint(moduleID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, progressResponse(p, result))
}

// @Summary 重置培训进度
// @Tags 培训进度
// @Produce json
// @Security BearerAuth
// @Param employeeId path int true "员工ID"
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/manager/training/progress/{employeeId}/{id}/reset [post]
func (c *TrainingController) Reset(ctx *gin.Context) {
	employeeID, err := strconv.Atoi(ctx.Param("employeeId"))
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}
	moduleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	p, result, err := c.Service.Reset(ctx.Request.Context(), uint(employeeID), uint(moduleID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, progressResponse(p, result))
}

// @Summary 当前员工的培训进度
// @Tags 培训进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/training/progress [get]
func (c *TrainingController) MyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Service.ListEmployeeProgress(ctx.Request.Context(), claims.EmployeeID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 某员工的培训进度
// @Tags 培训进度
// @Produce json
// @Security BearerAuth
// @Param employeeId path int true "员工ID"
// @Success 200 {object} util.Response
// @Router /api/manager/training/progress/{employeeId} [get]
func (c *TrainingController) EmployeeProgress(ctx *gin.Context) {
	employeeID, err := strconv.Atoi(ctx.Param("employeeId"))
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}

	progress, err := c.Service.ListEmployeeProgress(ctx.Request.Context(), uint(employeeID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

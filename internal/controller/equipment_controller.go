package controller

import (
	"strconv"
	"time"

	"hse_training_backend/internal/model"
	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EquipmentController struct {
	Service *service.EquipmentService
}

func NewEquipmentController(svc *service.EquipmentService) *EquipmentController {
	return &EquipmentController{Service: svc}
}

// @Summary 登记安全设备
// @Tags 设备检查
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.EquipmentCheck true "设备信息"
// @Success 201 {object} util.Response{data=model.EquipmentCheck}
// @Router /api/manager/equipment [post]
func (c *EquipmentController) Create(ctx *gin.Context) {
	var e model.EquipmentCheck
	if err := ctx.ShouldBindJSON(&e); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if e.LastCheckedAt.IsZero() {
		e.LastCheckedAt = time.Now()
	}

	if err := c.Service.Create(&e); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, e)
}

// @Summary 设备清单（按上次检查时间排序）
// @Tags 设备检查
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/manager/equipment [get]
func (c *EquipmentController) List(ctx *gin.Context) {
	items, err := c.Service.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// RecordCheckRequest 登记一次检查
type RecordCheckRequest struct {
	CheckedBy string `json:"checkedBy" binding:"required"`
}

// @Summary 登记一次设备检查
// @Tags 设备检查
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Param body body RecordCheckRequest true "检查人"
// @Success 200 {object} util.Response{data=model.EquipmentCheck}
// @Failure 404 {object} util.Response
// @Router /api/manager/equipment/{id}/check [post]
func (c *EquipmentController) RecordCheck(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req RecordCheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	e, err := c.Service.RecordCheck(uint(id), req.CheckedBy)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, e)
}

// @Summary 删除设备
// @Tags 设备检查
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Success 200 {object} util.Response
// @Router /api/manager/equipment/{id} [delete]
func (c *EquipmentController) Delete(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.Service.Delete(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

package controller

import (
	"strconv"

	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AlertController struct {
	Service *service.AlertService
}

func NewAlertController(svc *service.AlertService) *AlertController {
	return &AlertController{Service: svc}
}

// @Summary 告警列表
// @Tags 告警
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param unread query bool false "只看未读"
// @Success 200 {object} util.Response
// @Router /api/manager/alerts [get]
func (c *AlertController) List(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	unreadOnly := ctx.Query("unread") == "true"

	alerts, total, err := c.Service.List(page, limit, unreadOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: alerts, Total: total, Page: page, Limit: limit})
}

// @Summary 标记告警已读
// @Tags 告警
// @Produce json
// @Security BearerAuth
// @Param id path int true "告警ID"
// @Success 200 {object} util.Response
// @Router /api/manager/alerts/{id}/read [post]
func (c *AlertController) MarkRead(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.Service.MarkRead(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// @Summary 全部标记已读
// @Tags 告警
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/manager/alerts/read-all [post]
func (c *AlertController) MarkAllRead(ctx *gin.Context) {
	if err := c.Service.MarkAllRead(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"status": "ok"})
}

// @Summary 立即重算告警
// @Description 手动触发一轮告警重算，返回新增告警数
// @Tags 告警
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/manager/alerts/recompute [post]
func (c *AlertController) Recompute(ctx *gin.Context) {
	emitted, err := c.Service.Recompute(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"emitted": emitted})
}

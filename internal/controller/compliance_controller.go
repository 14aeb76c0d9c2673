package controller

import (
	"strconv"

	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ComplianceController struct {
	Service *service.ComplianceService
}

func NewComplianceController(svc *service.ComplianceService) *ComplianceController {
	return &ComplianceController{Service: svc}
}

// @Summary 员工合规清单
// @Description 按岗位要求逐模块分类：completed / expired / missing
// @Tags 合规
// @Produce json
// @Security BearerAuth
// @Param employeeId path int true "员工ID"
// @Success 200 {object} util.Response{data=model.ComplianceRecord}
// @Failure 404 {object} util.Response
// @Router /api/manager/compliance/employees/{employeeId} [get]
func (c *ComplianceController) EmployeeCompliance(ctx *gin.Context) {
	employeeID, err := strconv.Atoi(ctx.Param("employeeId"))
	if err != nil {
		util.BadRequest(ctx, "invalid employee id")
		return
	}

	record, err := c.Service.CheckEmployeeCompliance(ctx.Request.Context(), uint(employeeID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// @Summary 当前员工的合规清单
// @Tags 合规
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.ComplianceRecord}
// @Router /api/compliance/me [get]
func (c *ComplianceController) MyCompliance(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	record, err := c.Service.CheckEmployeeCompliance(ctx.Request.Context(), claims.EmployeeID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// @Summary 服务（部门）合规汇总
// @Tags 合规
// @Produce json
// @Security BearerAuth
// @Param service path string true "服务名"
// @Success 200 {object} util.Response{data=model.GroupCompliance}
// @Router /api/manager/compliance/services/{service} [get]
func (c *ComplianceController) ServiceCompliance(ctx *gin.Context) {
	g, err := c.Service.ServiceCompliance(ctx.Request.Context(), ctx.Param("service"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// @Summary 岗位角色合规汇总
// @Tags 合规
// @Produce json
// @Security BearerAuth
// @Param role path string true "岗位角色"
// @Success 200 {object} util.Response{data=model.GroupCompliance}
// @Router /api/manager/compliance/roles/{role} [get]
func (c *ComplianceController) RoleCompliance(ctx *gin.Context) {
	g, err := c.Service.RoleCompliance(ctx.Request.Context(), ctx.Param("role"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// @Summary 全部服务的合规总览
// @Tags 合规
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/manager/compliance/overview [get]
func (c *ComplianceController) Overview(ctx *gin.Context) {
	overview, err := c.Service.OverviewByService(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 需要整改的员工清单
// @Description 按优先级（high > medium）与合规率升序排列
// @Tags 合规
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/manager/compliance/actions [get]
func (c *ComplianceController) RequiringAction(ctx *gin.Context) {
	actions, err := c.Service.EmployeesRequiringAction(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, actions)
}

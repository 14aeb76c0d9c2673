package controller

import (
	"strconv"

	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EmployeeController struct {
	Service *service.EmployeeService
}

func NewEmployeeController(svc *service.EmployeeService) *EmployeeController {
	return &EmployeeController{Service: svc}
}

// @Summary 员工列表
// @Tags 员工
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param service query string false "按服务（部门）过滤"
// @Success 200 {object} util.Response
// @Router /api/manager/employees [get]
func (c *EmployeeController) List(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	serviceFilter := ctx.Query("service")

	employees, total, err := c.Service.List(page, limit, serviceFilter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	for i := range employees {
		employees[i].Password = ""
	}

	util.Success(ctx, util.PageResponse{List: employees, Total: total, Page: page, Limit: limit})
}

// @Summary 服务（部门）清单
// @Tags 员工
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/manager/employees/services [get]
func (c *EmployeeController) ListServices(ctx *gin.Context) {
	services, err := c.Service.ListServices()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, services)
}

// @Summary 员工详情
// @Tags 员工
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Success 200 {object} util.Response{data=model.Employee}
// @Failure 404 {object} util.Response
// @Router /api/manager/employees/{id} [get]
func (c *EmployeeController) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	employee, err := c.Service.GetProfile(uint(id))
	if err != nil {
		writeError(ctx, err)
		return
	}
	employee.Password = ""
	util.Success(ctx, employee)
}

// @Summary 更新个人资料
// @Tags 员工
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.Employee}
// @Router /api/profile [put]
func (c *EmployeeController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	employee, err := c.Service.UpdateProfile(claims.EmployeeID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	employee.Password = ""
	util.Success(ctx, employee)
}

// @Summary 调整员工岗位信息
// @Description 调整员工的服务、岗位角色与访问角色
// @Tags 员工
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Param body body service.UpdateAssignmentRequest true "岗位信息"
// @Success 200 {object} util.Response{data=model.Employee}
// @Failure 404 {object} util.Response
// @Router /api/manager/employees/{id}/assignment [put]
func (c *EmployeeController) UpdateAssignment(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.UpdateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	employee, err := c.Service.UpdateAssignment(uint(id), req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	employee.Password = ""
	util.Success(ctx, employee)
}

package controller

import (
	"hse_training_backend/internal/model"
	"hse_training_backend/internal/service"
	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Service  string   `json:"service"`
	JobRoles []string `json:"jobRoles"`
}

// Register godoc
// @Summary 注册新员工
// @Description 使用提供的信息注册新员工账号
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "员工注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	employee := &model.Employee{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleEmployee,
		Service:  req.Service,
		JobRoles: req.JobRoles,
	}

	if err := c.AuthService.Register(employee); err != nil {
		writeError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": employee.ID})
}

// LoginRequest 登录请求
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 员工登录
// @Description 邮箱密码登录，返回 JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response{data=object}
// @Failure 401 {object} util.Response "凭证无效"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

// Me godoc
// @Summary 当前登录员工信息
// @Tags 认证
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Employee}
// @Router /api/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	employee := c.AuthService.GetCurrentEmployee(ctx)
	if employee == nil {
		util.Unauthorized(ctx)
		return
	}
	employee.Password = ""
	util.Success(ctx, employee)
}

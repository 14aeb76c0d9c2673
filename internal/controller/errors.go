package controller

import (
	"errors"
	"net/http"

	"hse_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// writeError 把领域错误映射为统一响应：
// 未找到 404，冲突 409，状态不允许 422，权限 403，其余按内部错误记日志。
func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrEmployeeNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrProgressNotFound),
		errors.Is(err, util.ErrPathNotFound),
		errors.Is(err, util.ErrPathProgressNotFound),
		errors.Is(err, util.ErrAssessmentNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrEquipmentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrActivePathExists):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrInvalidState),
		errors.Is(err, util.ErrNoPassingResult),
		errors.Is(err, util.ErrTerminalProgress),
		errors.Is(err, util.ErrEvaluationNotDue),
		errors.Is(err, util.ErrAlreadyFinalized),
		errors.Is(err, util.ErrAttemptNotStarted),
		errors.Is(err, util.ErrNotAwaitingCorrect):
		util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, util.ErrNotPublished),
		errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrInvalidLogin):
		util.Unauthorized(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

package util

import "errors"

var (
	ErrEmailRegistered = errors.New("该邮箱已被注册")
	ErrInvalidLogin    = errors.New("invalid credentials")

	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrModuleNotFound       = errors.New("training module not found")
	ErrProgressNotFound     = errors.New("training progress not found")
	ErrPathNotFound         = errors.New("certification path not found")
	ErrPathProgressNotFound = errors.New("certification path progress not found")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrEquipmentNotFound    = errors.New("equipment check not found")

	// InvalidState 系列：当前状态不允许该操作
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrNoPassingResult    = errors.New("latest assessment result is not a pass")
	ErrActivePathExists   = errors.New("active certification progress already exists for candidate")
	ErrTerminalProgress   = errors.New("certification progress is terminal")
	ErrEvaluationNotDue   = errors.New("evaluation date not reached yet")
	ErrAlreadyFinalized   = errors.New("attempt already finalized")
	ErrAttemptNotStarted  = errors.New("attempt not started")
	ErrNotPublished       = errors.New("assessment not published or not accessible")
	ErrNotAwaitingCorrect = errors.New("submission is not awaiting correction")
	ErrPermissionDenied   = errors.New("permission denied")
)

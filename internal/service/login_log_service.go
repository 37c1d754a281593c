package service

import (
	"context"
	"strings"
	"time"

	"github.com/devfolio-next/internal/constants"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/repository"
)

// LoginLogService 登录日志服务
type LoginLogService struct {
	repo repository.LoginLogRepository
	now  func() time.Time
}

// NewLoginLogService 创建登录日志服务
func NewLoginLogService(repo repository.LoginLogRepository) *LoginLogService {
	return &LoginLogService{repo: repo, now: time.Now}
}

// RecordLoginInput 登录日志记录输入
type RecordLoginInput struct {
	UserID     uint
	Email      string
	Step       string
	Status     string
	FailReason string
	ClientIP   string
	UserAgent  string
	RequestID  string
}

// Record 记录登录行为，写入失败只记日志不影响主流程
func (s *LoginLogService) Record(ctx context.Context, input RecordLoginInput) {
	if s == nil || s.repo == nil {
		return
	}

	email := strings.TrimSpace(input.Email)
	if normalized, err := NormalizeEmail(email); err == nil {
		email = normalized
	}

	step := strings.TrimSpace(input.Step)
	if step != constants.LoginStepSecondFactor {
		step = constants.LoginStepCredentials
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status != constants.LoginStatusSuccess {
		status = constants.LoginStatusFailed
	}

	failReason := strings.ToLower(strings.TrimSpace(input.FailReason))
	if status == constants.LoginStatusSuccess {
		failReason = ""
	} else if failReason == "" {
		failReason = constants.LoginFailInternalError
	}

	entry := &models.LoginLog{
		UserID:     input.UserID,
		Email:      email,
		Step:       step,
		Status:     status,
		FailReason: failReason,
		ClientIP:   strings.TrimSpace(input.ClientIP),
		UserAgent:  strings.TrimSpace(input.UserAgent),
		RequestID:  strings.TrimSpace(input.RequestID),
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Warnw("login_log_record_failed",
			"user_id", input.UserID,
			"step", step,
			"request_id", entry.RequestID,
			"error", err,
		)
	}
}

// ListRecent 查询账号最近的登录日志
func (s *LoginLogService) ListRecent(ctx context.Context, userID uint, limit int) ([]models.LoginLog, error) {
	if s == nil || s.repo == nil || userID == 0 {
		return []models.LoginLog{}, nil
	}
	return s.repo.ListRecentByUser(ctx, userID, limit)
}

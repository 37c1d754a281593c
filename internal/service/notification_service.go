package service

import (
	"context"
	"fmt"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/constants"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/queue"
	"github.com/devfolio-next/internal/repository"

	"github.com/hibiken/asynq"
)

// NotificationQueue 通知任务队列
type NotificationQueue interface {
	Enabled() bool
	EnqueuePasswordChangedEmail(payload queue.PasswordChangedEmailPayload, opts ...asynq.Option) error
}

// NotificationService 账号通知服务
type NotificationService struct {
	users    repository.UserRepository
	email    EmailSender
	queue    NotificationQueue
	subjects config.EmailSubjectConfig
}

// NewNotificationService 创建通知服务
func NewNotificationService(users repository.UserRepository, email EmailSender, q NotificationQueue, subjects config.EmailSubjectConfig) *NotificationService {
	return &NotificationService{
		users:    users,
		email:    email,
		queue:    q,
		subjects: subjects,
	}
}

// NotifyPasswordChanged 通知密码已变更，队列可用时异步投递，否则直接发送
func (s *NotificationService) NotifyPasswordChanged(ctx context.Context, userID uint) error {
	if s == nil || userID == 0 {
		return nil
	}
	if s.queue != nil && s.queue.Enabled() {
		return s.queue.EnqueuePasswordChangedEmail(queue.PasswordChangedEmailPayload{UserID: userID})
	}
	return s.SendPasswordChanged(ctx, userID)
}

// SendPasswordChanged 发送密码变更通知邮件
func (s *NotificationService) SendPasswordChanged(ctx context.Context, userID uint) error {
	if s == nil || s.email == nil {
		return ErrEmailServiceDisabled
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		// 账号已不存在时无需重试
		logger.Debugw("notification_password_changed_user_missing", "user_id", userID)
		return nil
	}
	placeholders := map[string]string{
		constants.EmailPlaceholderUser: displayNameOrEmail(user.DisplayName, user.Email),
	}
	if err := s.email.Send(ctx, user.Email, s.subjects.PasswordChanged, constants.EmailTemplatePasswordChanged, placeholders); err != nil {
		return fmt.Errorf("send password changed email: %w", err)
	}
	return nil
}

func displayNameOrEmail(displayName, email string) string {
	if displayName != "" {
		return displayName
	}
	return email
}

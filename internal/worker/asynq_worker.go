package worker

import (
	"context"

	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/provider"
	"github.com/devfolio-next/internal/queue"

	"github.com/hibiken/asynq"
)

// passwordChangedNotifier 密码变更通知发送方
type passwordChangedNotifier interface {
	SendPasswordChanged(ctx context.Context, userID uint) error
}

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	notifier passwordChangedNotifier
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{Container: c}
	if c != nil && c.NotificationService != nil {
		consumer.notifier = c.NotificationService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPasswordChangedEmail, c.handlePasswordChangedEmail)
}

func (c *Consumer) handlePasswordChangedEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_password_changed_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePasswordChangedEmailPayload(task)
	if err != nil {
		// 载荷损坏重试也无法恢复
		logger.Warnw("worker_password_changed_email_invalid_payload", "error", err)
		return nil
	}
	if c.notifier == nil {
		logger.Warnw("worker_password_changed_email_skip_notifier_nil", "user_id", payload.UserID)
		return nil
	}
	if err := c.notifier.SendPasswordChanged(ctx, payload.UserID); err != nil {
		logger.Warnw("worker_password_changed_email_send_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	return nil
}

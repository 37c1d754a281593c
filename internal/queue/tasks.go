package queue

import (
	"encoding/json"
	"fmt"

	"github.com/devfolio-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPasswordChangedEmail 密码变更通知邮件任务
	TaskPasswordChangedEmail = constants.TaskPasswordChangedEmail
)

// PasswordChangedEmailPayload 密码变更通知任务载荷
type PasswordChangedEmailPayload struct {
	UserID uint `json:"user_id"`
}

// NewPasswordChangedEmailTask 创建密码变更通知任务
func NewPasswordChangedEmailTask(payload PasswordChangedEmailPayload) (*asynq.Task, error) {
	if payload.UserID == 0 {
		return nil, fmt.Errorf("password changed task requires user id")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPasswordChangedEmail, body), nil
}

// ParsePasswordChangedEmailPayload 解析密码变更通知任务载荷
func ParsePasswordChangedEmailPayload(task *asynq.Task) (PasswordChangedEmailPayload, error) {
	var payload PasswordChangedEmailPayload
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if payload.UserID == 0 {
		return payload, fmt.Errorf("password changed task requires user id")
	}
	return payload, nil
}

package models

import "time"

// LoginLog 登录日志
// 说明：记录凭证校验与二次验证两个步骤的结果，不保存密码或验证码。
type LoginLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"index" json:"user_id"` // 失败时可为 0
	Email      string    `gorm:"type:varchar(100);index;not null" json:"email"`
	Step       string    `gorm:"type:varchar(32);not null" json:"step"`   // credentials / second_factor
	Status     string    `gorm:"type:varchar(16);index;not null" json:"status"`
	FailReason string    `gorm:"type:varchar(64)" json:"fail_reason"`
	ClientIP   string    `gorm:"type:varchar(64)" json:"client_ip"`
	UserAgent  string    `gorm:"type:text" json:"user_agent"`
	RequestID  string    `gorm:"type:varchar(64);index" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (LoginLog) TableName() string {
	return "login_logs"
}

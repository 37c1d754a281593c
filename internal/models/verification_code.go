package models

import "time"

// VerificationCode 一次性验证码记录
// 说明：只保存验证码的 bcrypt 哈希；同一账号签发新码前会删除旧记录。
type VerificationCode struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	FlowKind   string     `gorm:"type:varchar(32);not null" json:"flow_kind"` // two_factor / recovery
	CodeHash   string     `gorm:"not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
	Consumed   bool       `gorm:"not null;default:false" json:"consumed"`
	ConsumedAt *time.Time `json:"consumed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName 指定表名
func (VerificationCode) TableName() string {
	return "verification_codes"
}

// IsExpired 判断验证码在给定时间是否已过期
func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

package models

import "time"

// User 账号表
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                  // 主键
	DisplayName  string     `gorm:"type:varchar(50);default:''" json:"display_name"`       // 显示名称
	Email        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`   // 邮箱（小写存储）
	PasswordHash string     `gorm:"not null" json:"-"`                                     // 密码哈希（不返回给前端）
	LastLoginAt  *time.Time `json:"last_login_at"`                                         // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

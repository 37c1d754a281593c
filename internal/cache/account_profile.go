package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/devfolio-next/internal/models"
)

// AccountProfileSnapshot 账号资料快照
// 仅缓存对外展示字段，不包含密码哈希
type AccountProfileSnapshot struct {
	UserID      uint      `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

func accountProfileKey(userID uint) string {
	return fmt.Sprintf("account:profile:%d", userID)
}

// BuildAccountProfileSnapshot 从用户模型构建资料快照
func BuildAccountProfileSnapshot(user *models.User) *AccountProfileSnapshot {
	if user == nil {
		return nil
	}
	return &AccountProfileSnapshot{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		CreatedAt:   user.CreatedAt,
	}
}

// GetAccountProfile 读取资料快照
func GetAccountProfile(ctx context.Context, userID uint) (*AccountProfileSnapshot, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var snapshot AccountProfileSnapshot
	hit, err := GetJSON(ctx, accountProfileKey(userID), &snapshot)
	if err != nil || !hit {
		return nil, false, err
	}
	return &snapshot, true, nil
}

// SetAccountProfile 写入资料快照
func SetAccountProfile(ctx context.Context, snapshot *AccountProfileSnapshot) error {
	if snapshot == nil || snapshot.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, accountProfileKey(snapshot.UserID), snapshot, profileTTL)
}

// DelAccountProfile 删除资料快照
func DelAccountProfile(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, accountProfileKey(userID))
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/devfolio-next/internal/cache"
	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/repository"
)

// ProfileService 当前账号资料服务
type ProfileService struct {
	users         repository.UserRepository
	hasher        *PasswordHasher
	notifications *NotificationService
	policy        config.PasswordPolicyConfig
}

// NewProfileService 创建资料服务
func NewProfileService(users repository.UserRepository, hasher *PasswordHasher, notifications *NotificationService, policy config.PasswordPolicyConfig) *ProfileService {
	return &ProfileService{
		users:         users,
		hasher:        hasher,
		notifications: notifications,
		policy:        policy,
	}
}

// UpdateProfileInput 资料更新输入，nil 字段保持不变
type UpdateProfileInput struct {
	DisplayName *string
	Email       *string
	Password    *string
}

// GetProfile 获取账号资料，优先读取缓存
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	if snapshot, hit, err := cache.GetAccountProfile(ctx, userID); err != nil {
		logger.Warnw("profile_cache_get_failed", "user_id", userID, "error", err)
	} else if hit {
		return &models.User{
			ID:          snapshot.UserID,
			DisplayName: snapshot.DisplayName,
			Email:       snapshot.Email,
			CreatedAt:   snapshot.CreatedAt,
		}, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if err := cache.SetAccountProfile(ctx, cache.BuildAccountProfileSnapshot(user)); err != nil {
		logger.Warnw("profile_cache_set_failed", "user_id", userID, "error", err)
	}
	return user, nil
}

// UpdateProfile 更新显示名称、邮箱或密码
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	fields := make(map[string]interface{}, 3)
	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
		fields["display_name"] = user.DisplayName
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			owner, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if owner != nil && owner.ID != user.ID {
				return nil, ErrEmailInUse
			}
			user.Email = email
			fields["email"] = email
		}
	}
	passwordChanged := false
	if input.Password != nil {
		if err := validatePassword(s.policy, *input.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
		fields["password_hash"] = hashed
		passwordChanged = true
	}
	if len(fields) == 0 {
		return user, nil
	}

	// 只写入本次修改的列，未提交的字段（尤其是密码）保持数据库中的当前值
	if err := s.users.UpdateFields(ctx, user.ID, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	if err := cache.DelAccountProfile(ctx, user.ID); err != nil {
		logger.Warnw("profile_cache_invalidate_failed", "user_id", user.ID, "error", err)
	}
	if passwordChanged {
		if err := s.notifications.NotifyPasswordChanged(ctx, user.ID); err != nil {
			logger.Warnw("profile_password_changed_notify_failed", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

package repository

import (
	"context"

	"github.com/devfolio-next/internal/models"

	"gorm.io/gorm"
)

// LoginLogRepository 登录日志数据访问接口
type LoginLogRepository interface {
	Create(ctx context.Context, log *models.LoginLog) error
	ListRecentByUser(ctx context.Context, userID uint, limit int) ([]models.LoginLog, error)
}

// GormLoginLogRepository GORM 实现
type GormLoginLogRepository struct {
	db *gorm.DB
}

// NewLoginLogRepository 创建登录日志仓库
func NewLoginLogRepository(db *gorm.DB) *GormLoginLogRepository {
	return &GormLoginLogRepository{db: db}
}

// Create 写入登录日志
func (r *GormLoginLogRepository) Create(ctx context.Context, log *models.LoginLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListRecentByUser 获取账号最近的登录日志
func (r *GormLoginLogRepository) ListRecentByUser(ctx context.Context, userID uint, limit int) ([]models.LoginLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []models.LoginLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

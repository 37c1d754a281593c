package repository

import (
	"context"
	"errors"
	"time"

	"github.com/devfolio-next/internal/models"

	"gorm.io/gorm"
)

// VerificationCodeRepository 一次性验证码数据访问接口
type VerificationCodeRepository interface {
	ReplaceForUser(ctx context.Context, code *models.VerificationCode) error
	GetLatestPending(ctx context.Context, userID uint) (*models.VerificationCode, error)
	MarkConsumed(ctx context.Context, id uint, consumedAt time.Time) (bool, error)
	IncrementAttempts(ctx context.Context, id uint) error
}

// GormVerificationCodeRepository GORM 实现
type GormVerificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository 创建验证码仓库
func NewVerificationCodeRepository(db *gorm.DB) *GormVerificationCodeRepository {
	return &GormVerificationCodeRepository{db: db}
}

// ReplaceForUser 删除账号下全部旧验证码（不区分流程）后写入新记录
func (r *GormVerificationCodeRepository) ReplaceForUser(ctx context.Context, code *models.VerificationCode) error {
	if code == nil || code.UserID == 0 {
		return errors.New("verification code requires a user id")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", code.UserID).Delete(&models.VerificationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

// GetLatestPending 获取未使用且过期时间最晚的验证码
func (r *GormVerificationCodeRepository) GetLatestPending(ctx context.Context, userID uint) (*models.VerificationCode, error) {
	var record models.VerificationCode
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND consumed = ?", userID, false).
		Order("expires_at desc, id desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkConsumed 标记验证码已使用；仅当记录仍未使用时生效，返回是否更新成功
func (r *GormVerificationCodeRepository) MarkConsumed(ctx context.Context, id uint, consumedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ? AND consumed = ?", id, false).
		Updates(map[string]interface{}{
			"consumed":    true,
			"consumed_at": consumedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementAttempts 错误次数加一
func (r *GormVerificationCodeRepository) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

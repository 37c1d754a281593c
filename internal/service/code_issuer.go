package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/constants"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/repository"
)

// CodeIssuer 一次性验证码签发与校验
type CodeIssuer struct {
	repo        repository.VerificationCodeRepository
	hasher      *PasswordHasher
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	random      io.Reader
}

// NewCodeIssuer 创建验证码签发器
func NewCodeIssuer(repo repository.VerificationCodeRepository, hasher *PasswordHasher, cfg config.AuthConfig) *CodeIssuer {
	return &CodeIssuer{
		repo:        repo,
		hasher:      hasher,
		ttl:         cfg.CodeTTL(),
		maxAttempts: cfg.ResolveCodeMaxAttempts(),
		now:         time.Now,
		random:      rand.Reader,
	}
}

// Issue 为账号签发新验证码，返回明文仅用于投递
func (s *CodeIssuer) Issue(ctx context.Context, userID uint, flowKind string) (string, time.Time, error) {
	if userID == 0 {
		return "", time.Time{}, ErrAccountNotFound
	}
	if !isFlowKindSupported(flowKind) {
		return "", time.Time{}, ErrInvalidFlowKind
	}

	code, err := randomNumericCode(s.random, constants.VerificationCodeDigits)
	if err != nil {
		return "", time.Time{}, err
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	record := &models.VerificationCode{
		UserID:    userID,
		FlowKind:  flowKind,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.ReplaceForUser(ctx, record); err != nil {
		return "", time.Time{}, err
	}
	return code, record.ExpiresAt, nil
}

// Verify 校验并消费账号当前的验证码
func (s *CodeIssuer) Verify(ctx context.Context, userID uint, submitted string) error {
	record, err := s.repo.GetLatestPending(ctx, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrNoPendingCode
	}

	now := s.now()
	// 过期的记录保持未使用状态，等待下一次签发时清理
	if record.IsExpired(now) {
		return ErrCodeExpired
	}
	// 错误次数用尽的验证码按过期处理，需重新签发
	if record.Attempts >= s.maxAttempts {
		return ErrCodeExpired
	}
	if !s.hasher.Verify(strings.TrimSpace(submitted), record.CodeHash) {
		if err := s.repo.IncrementAttempts(ctx, record.ID); err != nil {
			return err
		}
		return ErrCodeMismatch
	}

	updated, err := s.repo.MarkConsumed(ctx, record.ID, now)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNoPendingCode
	}
	return nil
}

func isFlowKindSupported(flowKind string) bool {
	switch flowKind {
	case constants.FlowTwoFactor, constants.FlowRecovery:
		return true
	default:
		return false
	}
}

// randomNumericCode 在 [0, 10^digits) 上均匀取值并补零
func randomNumericCode(random io.Reader, digits int) (string, error) {
	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(random, upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}

package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/devfolio-next/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose 令牌用途
type Purpose string

const (
	PurposeSession              Purpose = "session"
	PurposeTwoFactorPending     Purpose = "2fa_pending"
	PurposePasswordResetPending Purpose = "password_reset_pending"
)

// Valid 是否为已知用途
func (p Purpose) Valid() bool {
	switch p {
	case PurposeSession, PurposeTwoFactorPending, PurposePasswordResetPending:
		return true
	default:
		return false
	}
}

// IsPending 是否为流程中间态用途
func (p Purpose) IsPending() bool {
	return p == PurposeTwoFactorPending || p == PurposePasswordResetPending
}

// ScopedClaims 带用途的令牌声明
type ScopedClaims struct {
	Purpose     Purpose `json:"purpose"`
	Fingerprint string  `json:"pwd_fp,omitempty"` // 仅重置密码令牌携带
	jwt.RegisteredClaims

	userID uint
}

// UserID 令牌主体对应的账号 ID（校验通过后可用）
func (c *ScopedClaims) UserID() uint {
	if c == nil {
		return 0
	}
	return c.userID
}

// IssuedToken 签发结果
type IssuedToken struct {
	Token     string
	Purpose   Purpose
	ExpiresAt time.Time
}

// TokenOption 签发选项
type TokenOption func(*ScopedClaims)

// WithFingerprint 写入密码指纹
func WithFingerprint(fingerprint string) TokenOption {
	return func(c *ScopedClaims) {
		c.Fingerprint = fingerprint
	}
}

// TokenService 用途限定令牌服务
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttls     map[Purpose]time.Duration
	now      func() time.Time
}

// NewTokenService 创建令牌服务
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		ttls: map[Purpose]time.Duration{
			PurposeSession:              cfg.SessionTTL(),
			PurposeTwoFactorPending:     cfg.TwoFactorTTL(),
			PurposePasswordResetPending: cfg.ResetTTL(),
		},
		now: time.Now,
	}
}

// Issue 签发指定用途的令牌
func (s *TokenService) Issue(userID uint, purpose Purpose, opts ...TokenOption) (*IssuedToken, error) {
	if len(s.secret) == 0 {
		return nil, ErrTokenSecretMissing
	}
	if userID == 0 {
		return nil, ErrAccountNotFound
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: unknown purpose %q", ErrTokenInvalid, purpose)
	}

	now := s.now()
	expiresAt := now.Add(s.ttls[purpose])
	claims := &ScopedClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	for _, opt := range opts {
		opt(claims)
	}
	if purpose == PurposePasswordResetPending && claims.Fingerprint == "" {
		return nil, fmt.Errorf("%w: reset token requires a fingerprint", ErrTokenInvalid)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		Token:     signed,
		Purpose:   purpose,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Parse 校验签名、签发方、受众与有效期，不检查用途
func (s *TokenService) Parse(tokenString string) (*ScopedClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrTokenSecretMissing
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	claims := &ScopedClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if !claims.Purpose.Valid() {
		return nil, fmt.Errorf("%w: unknown purpose %q", ErrTokenInvalid, claims.Purpose)
	}
	if claims.Purpose == PurposePasswordResetPending && claims.Fingerprint == "" {
		return nil, fmt.Errorf("%w: reset token without fingerprint", ErrTokenInvalid)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("%w: invalid subject", ErrTokenInvalid)
	}
	claims.userID = uint(userID)
	return claims, nil
}

// Validate 在 Parse 的基础上要求令牌用途与预期一致
func (s *TokenService) Validate(tokenString string, expected Purpose) (*ScopedClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != expected {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

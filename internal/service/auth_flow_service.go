package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/constants"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/repository"
)

// AuthFlowDeps 认证流程依赖
type AuthFlowDeps struct {
	Users          repository.UserRepository
	Hasher         *PasswordHasher
	Codes          *CodeIssuer
	Tokens         *TokenService
	Fingerprints   *FingerprintGuard
	Email          EmailSender
	Notifications  *NotificationService
	LoginLogs      *LoginLogService
	Auth           config.AuthConfig
	Subjects       config.EmailSubjectConfig
	PasswordPolicy config.PasswordPolicyConfig
}

// AuthFlowService 登录二次验证与找回密码流程
// 步骤之间不保存进程内状态，依赖数据库中的验证码与签名令牌
type AuthFlowService struct {
	users         repository.UserRepository
	hasher        *PasswordHasher
	codes         *CodeIssuer
	tokens        *TokenService
	fingerprints  *FingerprintGuard
	email         EmailSender
	notifications *NotificationService
	loginLogs     *LoginLogService
	codeTTL       time.Duration
	subjects      config.EmailSubjectConfig
	policy        config.PasswordPolicyConfig
	now           func() time.Time
}

// NewAuthFlowService 创建认证流程服务
func NewAuthFlowService(deps AuthFlowDeps) *AuthFlowService {
	return &AuthFlowService{
		users:         deps.Users,
		hasher:        deps.Hasher,
		codes:         deps.Codes,
		tokens:        deps.Tokens,
		fingerprints:  deps.Fingerprints,
		email:         deps.Email,
		notifications: deps.Notifications,
		loginLogs:     deps.LoginLogs,
		codeTTL:       deps.Auth.CodeTTL(),
		subjects:      deps.Subjects,
		policy:        deps.PasswordPolicy,
		now:           time.Now,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

// LoginInput 登录输入
type LoginInput struct {
	Email     string
	Password  string
	ClientIP  string
	UserAgent string
	RequestID string
}

// PendingLogin 凭证校验通过、等待二次验证的登录
type PendingLogin struct {
	Token     string
	Purpose   Purpose
	ExpiresAt time.Time
}

// ConfirmTwoFactorInput 二次验证输入
type ConfirmTwoFactorInput struct {
	Token     string
	Code      string
	ClientIP  string
	UserAgent string
	RequestID string
}

// SessionResult 登录完成后的会话
type SessionResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// ResetPasswordInput 重置密码输入
type ResetPasswordInput struct {
	Token        string
	NewPassword  string
	Confirmation string
}

// Register 注册账号
func (s *AuthFlowService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.policy, input.Password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

// Login 校验凭证，通过后下发二次验证码与待验证令牌
// 邮箱不存在与密码错误返回同一个错误
func (s *AuthFlowService) Login(ctx context.Context, input LoginInput) (*PendingLogin, error) {
	audit := RecordLoginInput{
		Email:     input.Email,
		Step:      constants.LoginStepCredentials,
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
		RequestID: input.RequestID,
	}

	user, err := s.checkCredentials(ctx, input.Email, input.Password)
	if err != nil {
		s.recordFailure(ctx, audit, err)
		return nil, err
	}
	audit.UserID = user.ID

	code, _, err := s.codes.Issue(ctx, user.ID, constants.FlowTwoFactor)
	if err != nil {
		s.recordFailure(ctx, audit, err)
		return nil, err
	}
	if err := s.deliverCode(ctx, user, code, s.subjects.TwoFactor); err != nil {
		s.recordFailure(ctx, audit, err)
		return nil, err
	}

	issued, err := s.tokens.Issue(user.ID, PurposeTwoFactorPending)
	if err != nil {
		s.recordFailure(ctx, audit, err)
		return nil, err
	}
	audit.Status = constants.LoginStatusSuccess
	s.loginLogs.Record(ctx, audit)

	return &PendingLogin{
		Token:     issued.Token,
		Purpose:   issued.Purpose,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// ConfirmTwoFactor 校验待验证令牌与验证码，成功后签发会话令牌
// 失败不改变状态，客户端可在验证码有效期内重试
func (s *AuthFlowService) ConfirmTwoFactor(ctx context.Context, input ConfirmTwoFactorInput) (*SessionResult, error) {
	audit := RecordLoginInput{
		Step:      constants.LoginStepSecondFactor,
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
		RequestID: input.RequestID,
	}

	claims, err := s.tokens.Validate(input.Token, PurposeTwoFactorPending)
	if err != nil {
		s.recordFailure(ctx, audit, err)
		return nil, err
	}
	audit.UserID = claims.UserID()

	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.recordFailure(ctx, audit, ErrAccountNotFound)
		return nil, ErrAccountNotFound
	}
	audit.Email = user.Email

	if err := s.codes.Verify(ctx, user.ID, input.Code); err != nil {
		s.recordFailure(ctx, audit, err)
		return nil, err
	}

	session, err := s.tokens.Issue(user.ID, PurposeSession)
	if err != nil {
		s.recordFailure(ctx, audit, err)
		return nil, err
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Warnw("auth_update_last_login_failed", "user_id", user.ID, "error", err)
	}
	audit.Status = constants.LoginStatusSuccess
	s.loginLogs.Record(ctx, audit)

	return &SessionResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// RequestRecovery 发起找回密码，邮箱不存在时同样返回成功
func (s *AuthFlowService) RequestRecovery(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Debugw("auth_recovery_unknown_account")
		return nil
	}

	code, _, err := s.codes.Issue(ctx, user.ID, constants.FlowRecovery)
	if err != nil {
		return err
	}
	return s.deliverCode(ctx, user, code, s.subjects.Recovery)
}

// VerifyRecoveryCode 校验找回验证码，成功后签发绑定当前密码指纹的重置令牌
func (s *AuthFlowService) VerifyRecoveryCode(ctx context.Context, email, code string) (*IssuedToken, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrNoPendingCode
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoPendingCode
	}
	if err := s.codes.Verify(ctx, user.ID, code); err != nil {
		return nil, err
	}
	return s.tokens.Issue(user.ID, PurposePasswordResetPending, WithFingerprint(s.fingerprints.FingerprintOf(user)))
}

// ResetPassword 使用重置令牌设置新密码
// 密码一旦变更，指纹随之变化，同一令牌无法再次使用
func (s *AuthFlowService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if input.NewPassword != input.Confirmation {
		return ErrPasswordConfirmMismatch
	}
	if err := validatePassword(s.policy, input.NewPassword); err != nil {
		return err
	}

	claims, err := s.tokens.Validate(input.Token, PurposePasswordResetPending)
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		return err
	}
	if user == nil {
		return ErrAccountNotFound
	}
	if !s.fingerprints.MatchesFingerprint(user, claims.Fingerprint) {
		return ErrStaleResetToken
	}

	hashed, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	// 以校验指纹时读到的哈希为条件写入，期间密码被改动则令牌作废
	replaced, err := s.users.ReplacePasswordHash(ctx, user.ID, user.PasswordHash, hashed)
	if err != nil {
		return err
	}
	if !replaced {
		return ErrStaleResetToken
	}
	user.PasswordHash = hashed

	if err := s.notifications.NotifyPasswordChanged(ctx, user.ID); err != nil {
		logger.Warnw("auth_password_changed_notify_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *AuthFlowService) checkCredentials(ctx context.Context, email, password string) (*models.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// 与真实账号同样执行一次 bcrypt 比较，响应耗时不暴露邮箱是否注册
		s.hasher.Verify(password, s.hasher.placeholderHash())
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// deliverCode 投递验证码，失败时已签发的验证码保持有效
func (s *AuthFlowService) deliverCode(ctx context.Context, user *models.User, code, subject string) error {
	if s.email == nil {
		return ErrEmailServiceNotConfigured
	}
	placeholders := map[string]string{
		constants.EmailPlaceholderUser:    displayNameOrEmail(user.DisplayName, user.Email),
		constants.EmailPlaceholderCode:    code,
		constants.EmailPlaceholderMinutes: strconv.Itoa(int(s.codeTTL / time.Minute)),
	}
	if err := s.email.Send(ctx, user.Email, subject, constants.EmailTemplateTwoFactor, placeholders); err != nil {
		logger.Warnw("auth_code_delivery_failed", "user_id", user.ID, "error", err)
		if errors.Is(err, ErrEmailDeliveryFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrEmailDeliveryFailed, err)
	}
	return nil
}

func (s *AuthFlowService) recordFailure(ctx context.Context, audit RecordLoginInput, err error) {
	audit.Status = constants.LoginStatusFailed
	audit.FailReason = loginFailReason(err)
	s.loginLogs.Record(ctx, audit)
}

func loginFailReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountNotFound):
		return constants.LoginFailInvalidCredentials
	case errors.Is(err, ErrNoPendingCode):
		return constants.LoginFailNoPendingCode
	case errors.Is(err, ErrCodeExpired):
		return constants.LoginFailCodeExpired
	case errors.Is(err, ErrCodeMismatch):
		return constants.LoginFailCodeMismatch
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrWrongPurpose):
		return constants.LoginFailTokenInvalid
	case errors.Is(err, ErrEmailDeliveryFailed):
		return constants.LoginFailEmailDelivery
	default:
		return constants.LoginFailInternalError
	}
}

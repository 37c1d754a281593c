package public

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/constants"
	handlershared "github.com/devfolio-next/internal/http/handlers/shared"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/provider"
	"github.com/devfolio-next/internal/queue"
	"github.com/devfolio-next/internal/repository"
	"github.com/devfolio-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type capturedEmail struct {
	to           string
	template     string
	placeholders map[string]string
}

type captureSender struct {
	mu   sync.Mutex
	sent []capturedEmail
	err  error
}

func (s *captureSender) Send(_ context.Context, to, _ string, templateName string, placeholders map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, capturedEmail{to: to, template: templateName, placeholders: placeholders})
	return s.err
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		t.Fatalf("expected an email to be sent")
	}
	return s.sent[len(s.sent)-1].placeholders[constants.EmailPlaceholderCode]
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type handlerFixture struct {
	engine *gin.Engine
	email  *captureSender
	c      *provider.Container
}

func setupHandlerTest(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handlershared.RegisterValidators()

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	authCfg := config.AuthConfig{
		Secret:              "handler-test-secret-with-entropy",
		Issuer:              "devfolio-api",
		Audience:            "devfolio-web",
		SessionTTLMinutes:   60,
		TwoFactorTTLMinutes: 5,
		ResetTTLMinutes:     5,
		CodeTTLMinutes:      5,
		FingerprintLength:   10,
	}
	policy := config.PasswordPolicyConfig{MinLength: 6}
	queueClient, _ := queue.NewClient(nil)
	email := &captureSender{}

	c := &provider.Container{
		Config:               &config.Config{Auth: authCfg},
		QueueClient:          queueClient,
		UserRepo:             repository.NewUserRepository(db),
		VerificationCodeRepo: repository.NewVerificationCodeRepository(db),
		LoginLogRepo:         repository.NewLoginLogRepository(db),
		PasswordHasher:       service.NewPasswordHasher(bcrypt.MinCost),
		TokenService:         service.NewTokenService(authCfg),
		FingerprintGuard:     service.NewFingerprintGuard(authCfg.ResolveFingerprintLength()),
		CaptchaService:       service.NewCaptchaService(config.CaptchaConfig{}),
	}
	c.CodeIssuer = service.NewCodeIssuer(c.VerificationCodeRepo, c.PasswordHasher, authCfg)
	c.LoginLogService = service.NewLoginLogService(c.LoginLogRepo)
	c.NotificationService = service.NewNotificationService(c.UserRepo, email, queueClient, config.EmailSubjectConfig{})
	c.AuthFlowService = service.NewAuthFlowService(service.AuthFlowDeps{
		Users:          c.UserRepo,
		Hasher:         c.PasswordHasher,
		Codes:          c.CodeIssuer,
		Tokens:         c.TokenService,
		Fingerprints:   c.FingerprintGuard,
		Email:          email,
		Notifications:  c.NotificationService,
		LoginLogs:      c.LoginLogService,
		Auth:           authCfg,
		PasswordPolicy: policy,
	})
	c.ProfileService = service.NewProfileService(c.UserRepo, c.PasswordHasher, c.NotificationService, policy)

	h := New(c)
	engine := gin.New()
	auth := engine.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/2fa/confirm", h.ConfirmTwoFactor)
	auth.GET("/captcha", h.GetImageCaptcha)
	auth.POST("/recovery/request", h.RequestRecovery)
	auth.POST("/recovery/verify", h.VerifyRecovery)
	auth.POST("/recovery/reset", h.ResetPassword)

	// 测试中直接信任 X-Test-User 头，会话校验由路由中间件负责
	me := engine.Group("/me", func(ctx *gin.Context) {
		var id uint
		if _, err := fmt.Sscan(ctx.GetHeader("X-Test-User"), &id); err == nil {
			ctx.Set(constants.ContextKeyUserID, id)
		}
		ctx.Next()
	})
	me.GET("", h.GetMe)
	me.PUT("", h.UpdateMe)
	me.GET("/login-logs", h.GetLoginHistory)

	return &handlerFixture{engine: engine, email: email, c: c}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope failed: %v body=%s", err, w.Body.String())
	}
	return w.Code, env
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data failed: %v data=%s", err, string(env.Data))
	}
}

func (f *handlerFixture) register(t *testing.T, email, password string) uint {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/auth/register", gin.H{
		"display_name": "Ana",
		"email":        email,
		"password":     password,
	}, nil)
	if status != http.StatusCreated || !env.Success {
		t.Fatalf("register want 201 got %d %+v", status, env)
	}
	var data struct {
		ID uint `json:"id"`
	}
	decodeData(t, env, &data)
	return data.ID
}

type tokenData struct {
	Token     string    `json:"token"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (f *handlerFixture) login(t *testing.T, email, password string) tokenData {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": password}, nil)
	if status != http.StatusOK {
		t.Fatalf("login want 200 got %d %+v", status, env)
	}
	var data tokenData
	decodeData(t, env, &data)
	return data
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}

func TestLoginWithTwoFactorOverHTTP(t *testing.T) {
	f := setupHandlerTest(t)
	f.register(t, "ana@example.com", "secret1")

	pending := f.login(t, "Ana@Example.com", "secret1")
	if pending.Purpose != string(service.PurposeTwoFactorPending) || pending.Token == "" {
		t.Fatalf("login should return a 2fa_pending token, got %+v", pending)
	}
	code := f.email.lastCode(t)

	status, env := f.do(t, http.MethodPost, "/auth/2fa/confirm", gin.H{"token": pending.Token, "code": wrongCode(code)}, nil)
	if status != http.StatusBadRequest || env.Message != "the verification code is not correct" {
		t.Fatalf("wrong code want 400 mismatch got %d %q", status, env.Message)
	}

	status, env = f.do(t, http.MethodPost, "/auth/2fa/confirm", gin.H{"token": pending.Token, "code": code}, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("confirm want 200 got %d %+v", status, env)
	}
	var session struct {
		Token   string `json:"token"`
		Purpose string `json:"purpose"`
		User    struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeData(t, env, &session)
	if session.Purpose != string(service.PurposeSession) || session.User.Email != "ana@example.com" {
		t.Fatalf("unexpected session payload: %+v", session)
	}

	// 会话令牌不能再次用于二次验证
	status, env = f.do(t, http.MethodPost, "/auth/2fa/confirm", gin.H{"token": session.Token, "code": code}, nil)
	if status != http.StatusUnauthorized || env.Message != "this token was not issued for this step" {
		t.Fatalf("session token at confirm want 401 wrong purpose got %d %q", status, env.Message)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := setupHandlerTest(t)
	f.register(t, "ana@example.com", "secret1")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ana@example.com", password: "nope123"},
		{name: "unknown email", email: "bob@example.com", password: "secret1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(t, http.MethodPost, "/auth/login", gin.H{"email": tt.email, "password": tt.password}, nil)
			if status != http.StatusUnauthorized || env.Message != "invalid email or password" {
				t.Fatalf("want 401 invalid credentials got %d %q", status, env.Message)
			}
		})
	}
	if f.email.count() != 0 {
		t.Fatalf("no code should be sent on bad credentials, sent %d", f.email.count())
	}
}

func TestLoginDeliveryFailureReturnsBadGateway(t *testing.T) {
	f := setupHandlerTest(t)
	f.register(t, "ana@example.com", "secret1")
	f.email.err = fmt.Errorf("smtp down")

	status, env := f.do(t, http.MethodPost, "/auth/login", gin.H{"email": "ana@example.com", "password": "secret1"}, nil)
	if status != http.StatusBadGateway || env.Success {
		t.Fatalf("delivery failure want 502 got %d %+v", status, env)
	}
	if string(env.Data) != "null" && len(env.Data) != 0 {
		var data map[string]interface{}
		decodeData(t, env, &data)
		if _, ok := data["token"]; ok {
			t.Fatalf("no token should be returned when delivery fails")
		}
	}
}

func TestRecoveryFlowOverHTTP(t *testing.T) {
	f := setupHandlerTest(t)
	f.register(t, "ana@example.com", "secret1")

	status, known := f.do(t, http.MethodPost, "/auth/recovery/request", gin.H{"email": "ana@example.com"}, nil)
	if status != http.StatusOK {
		t.Fatalf("recovery request want 200 got %d", status)
	}
	code := f.email.lastCode(t)

	status, unknown := f.do(t, http.MethodPost, "/auth/recovery/request", gin.H{"email": "ghost@example.com"}, nil)
	if status != http.StatusOK || unknown.Message != known.Message {
		t.Fatalf("unknown email should get the same ack, want %q got %d %q", known.Message, status, unknown.Message)
	}

	status, env := f.do(t, http.MethodPost, "/auth/recovery/verify", gin.H{"email": "ana@example.com", "code": code}, nil)
	if status != http.StatusOK {
		t.Fatalf("recovery verify want 200 got %d %+v", status, env)
	}
	var verified struct {
		ResetToken string `json:"reset_token"`
	}
	decodeData(t, env, &verified)

	status, env = f.do(t, http.MethodPost, "/auth/recovery/reset", gin.H{
		"token": verified.ResetToken, "new_password": "secret2", "confirm_password": "secret3",
	}, nil)
	if status != http.StatusBadRequest || env.Message != "the passwords do not match" {
		t.Fatalf("confirmation mismatch want 400 got %d %q", status, env.Message)
	}

	status, _ = f.do(t, http.MethodPost, "/auth/recovery/reset", gin.H{
		"token": verified.ResetToken, "new_password": "secret2", "confirm_password": "secret2",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("reset want 200 got %d", status)
	}

	status, env = f.do(t, http.MethodPost, "/auth/recovery/reset", gin.H{
		"token": verified.ResetToken, "new_password": "secret3", "confirm_password": "secret3",
	}, nil)
	if status != http.StatusBadRequest || env.Message != "this recovery link was already used" {
		t.Fatalf("replayed reset token want 400 stale got %d %q", status, env.Message)
	}

	f.login(t, "ana@example.com", "secret2")
}

func TestRecoveryVerifyWithoutPendingCode(t *testing.T) {
	f := setupHandlerTest(t)
	status, env := f.do(t, http.MethodPost, "/auth/recovery/verify", gin.H{"email": "ghost@example.com", "code": "123456"}, nil)
	if status != http.StatusBadRequest || env.Message != "there is no pending verification code, request a new one" {
		t.Fatalf("want 400 no pending code got %d %q", status, env.Message)
	}
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	f := setupHandlerTest(t)
	f.register(t, "ana@example.com", "secret1")

	status, env := f.do(t, http.MethodPost, "/auth/register", gin.H{"email": "ANA@example.com", "password": "secret1"}, nil)
	if status != http.StatusConflict || env.Message != "the email is already registered" {
		t.Fatalf("duplicate email want 409 got %d %q", status, env.Message)
	}

	status, env = f.do(t, http.MethodPost, "/auth/register", gin.H{"email": "bob@example.com", "password": "abc"}, nil)
	if status != http.StatusBadRequest || env.Message != "the password must be at least 6 characters" {
		t.Fatalf("weak password want 400 got %d %q", status, env.Message)
	}

	status, env = f.do(t, http.MethodPost, "/auth/register", gin.H{"email": "not-an-email"}, nil)
	want := "validation failed: email must be a valid email address, password is required"
	if status != http.StatusBadRequest || env.Message != want {
		t.Fatalf("validation want %q got %d %q", want, status, env.Message)
	}

	status, env = f.do(t, http.MethodPost, "/auth/register", gin.H{"email": "bob@example.com", "password": "abc"}, map[string]string{"Accept-Language": "es"})
	if status != http.StatusBadRequest || env.Message == "the password must be at least 6 characters" {
		t.Fatalf("spanish request should get a localized message, got %d %q", status, env.Message)
	}
}

func TestProfileEndpoints(t *testing.T) {
	f := setupHandlerTest(t)
	id := f.register(t, "ana@example.com", "secret1")
	f.register(t, "bob@example.com", "secret1")
	user := map[string]string{"X-Test-User": fmt.Sprint(id)}

	status, env := f.do(t, http.MethodGet, "/me", nil, user)
	if status != http.StatusOK {
		t.Fatalf("get me want 200 got %d", status)
	}
	var view AccountView
	decodeData(t, env, &view)
	if view.ID != id || view.Email != "ana@example.com" || view.DisplayName != "Ana" {
		t.Fatalf("unexpected profile: %+v", view)
	}

	status, env = f.do(t, http.MethodPut, "/me", gin.H{"email": "bob@example.com"}, user)
	if status != http.StatusConflict {
		t.Fatalf("taken email want 409 got %d %q", status, env.Message)
	}

	status, env = f.do(t, http.MethodPut, "/me", gin.H{"display_name": "  Ana María  ", "password": "newpass"}, user)
	if status != http.StatusOK {
		t.Fatalf("update want 200 got %d %q", status, env.Message)
	}
	decodeData(t, env, &view)
	if view.DisplayName != "Ana María" {
		t.Fatalf("display name should be trimmed, got %q", view.DisplayName)
	}
	f.login(t, "ana@example.com", "newpass")

	status, _ = f.do(t, http.MethodGet, "/me", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("missing user want 401 got %d", status)
	}

	status, env = f.do(t, http.MethodGet, "/me/login-logs?limit=5", nil, user)
	if status != http.StatusOK {
		t.Fatalf("login history want 200 got %d", status)
	}
	var logs []models.LoginLog
	decodeData(t, env, &logs)
	if len(logs) != 1 || logs[0].Step != constants.LoginStepCredentials {
		t.Fatalf("want one credentials log got %+v", logs)
	}
}

func TestCaptchaDisabled(t *testing.T) {
	f := setupHandlerTest(t)
	status, env := f.do(t, http.MethodGet, "/auth/captcha", nil, nil)
	if status != http.StatusBadRequest || env.Message != "captcha is not enabled" {
		t.Fatalf("disabled captcha want 400 got %d %q", status, env.Message)
	}
}

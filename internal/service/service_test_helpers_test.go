package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/constants"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/queue"
	"github.com/devfolio-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentEmail struct {
	To           string
	Subject      string
	Template     string
	Placeholders map[string]string
}

type recordingEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (r *recordingEmailSender) Send(_ context.Context, to, subject, templateName string, placeholders map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[string]string, len(placeholders))
	for k, v := range placeholders {
		copied[k] = v
	}
	r.sent = append(r.sent, sentEmail{To: to, Subject: subject, Template: templateName, Placeholders: copied})
	return r.err
}

func (r *recordingEmailSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recordingEmailSender) last(t *testing.T) sentEmail {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		t.Fatalf("expected an email to be sent")
	}
	return r.sent[len(r.sent)-1]
}

func (r *recordingEmailSender) lastCode(t *testing.T) string {
	t.Helper()
	code := r.last(t).Placeholders[constants.EmailPlaceholderCode]
	if len(code) != constants.VerificationCodeDigits {
		t.Fatalf("delivered code should have %d digits, got %q", constants.VerificationCodeDigits, code)
	}
	return code
}

type fakeNotificationQueue struct {
	mu       sync.Mutex
	enabled  bool
	payloads []queue.PasswordChangedEmailPayload
	err      error
}

func (q *fakeNotificationQueue) Enabled() bool {
	return q.enabled
}

func (q *fakeNotificationQueue) EnqueuePasswordChangedEmail(payload queue.PasswordChangedEmailPayload, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, payload)
	return q.err
}

type authFlowFixture struct {
	db       *gorm.DB
	clock    *fakeClock
	users    repository.UserRepository
	codes    *CodeIssuer
	tokens   *TokenService
	guard    *FingerprintGuard
	email    *recordingEmailSender
	queue    *fakeNotificationQueue
	flow     *AuthFlowService
	profiles *ProfileService
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:              "test-secret-with-enough-entropy",
		Issuer:              "devfolio-api",
		Audience:            "devfolio-web",
		SessionTTLMinutes:   480,
		TwoFactorTTLMinutes: 5,
		ResetTTLMinutes:     5,
		CodeTTLMinutes:      5,
		FingerprintLength:   10,
	}
}

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func setupAuthFlowTest(t *testing.T) *authFlowFixture {
	t.Helper()
	db := openServiceTestDB(t, "auth_flow_service_test")
	authCfg := testAuthConfig()
	clock := newFakeClock()

	users := repository.NewUserRepository(db)
	hasher := NewPasswordHasher(bcrypt.MinCost)
	codes := NewCodeIssuer(repository.NewVerificationCodeRepository(db), hasher, authCfg)
	codes.now = clock.Now
	tokens := NewTokenService(authCfg)
	tokens.now = clock.Now
	guard := NewFingerprintGuard(authCfg.ResolveFingerprintLength())
	email := &recordingEmailSender{}
	q := &fakeNotificationQueue{enabled: true}
	subjects := config.EmailSubjectConfig{
		TwoFactor:       "Your login code",
		Recovery:        "Account recovery - Portfolio Dev",
		PasswordChanged: "Password changed",
	}
	notifications := NewNotificationService(users, email, q, subjects)
	loginLogs := NewLoginLogService(repository.NewLoginLogRepository(db))
	loginLogs.now = clock.Now
	policy := config.PasswordPolicyConfig{MinLength: 6}

	flow := NewAuthFlowService(AuthFlowDeps{
		Users:          users,
		Hasher:         hasher,
		Codes:          codes,
		Tokens:         tokens,
		Fingerprints:   guard,
		Email:          email,
		Notifications:  notifications,
		LoginLogs:      loginLogs,
		Auth:           authCfg,
		Subjects:       subjects,
		PasswordPolicy: policy,
	})
	flow.now = clock.Now

	return &authFlowFixture{
		db:       db,
		clock:    clock,
		users:    users,
		codes:    codes,
		tokens:   tokens,
		guard:    guard,
		email:    email,
		queue:    q,
		flow:     flow,
		profiles: NewProfileService(users, hasher, notifications, policy),
	}
}

func (f *authFlowFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	user, err := f.flow.Register(context.Background(), RegisterInput{DisplayName: "Ana", Email: email, Password: password})
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return user
}

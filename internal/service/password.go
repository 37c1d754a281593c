package service

import (
	"net/mail"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher bcrypt 哈希封装，账号密码与一次性验证码共用
type PasswordHasher struct {
	cost int

	placeholderOnce sync.Once
	placeholder     string
}

// NewPasswordHasher 创建哈希器，非法 cost 回退为默认值
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash 生成哈希
func (h *PasswordHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify 校验明文与哈希是否匹配
func (h *PasswordHasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// placeholderHash 与真实哈希同 cost 的占位哈希，账号不存在时用于比较
func (h *PasswordHasher) placeholderHash() string {
	h.placeholderOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("devfolio-placeholder-credential"), h.cost)
		if err == nil {
			h.placeholder = string(hashed)
		}
	})
	return h.placeholder
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

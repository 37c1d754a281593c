package service

import (
	"crypto/subtle"

	"github.com/devfolio-next/internal/models"
)

// FingerprintGuard 根据当前密码哈希生成指纹，用于判断重置令牌签发后密码是否已变更
// 指纹只用于变更检测，不是凭证
type FingerprintGuard struct {
	length int
}

// NewFingerprintGuard 创建指纹守卫
func NewFingerprintGuard(length int) *FingerprintGuard {
	if length <= 0 {
		length = 10
	}
	return &FingerprintGuard{length: length}
}

// FingerprintOf 取密码哈希末尾若干字符
func (g *FingerprintGuard) FingerprintOf(user *models.User) string {
	if user == nil {
		return ""
	}
	hash := user.PasswordHash
	if len(hash) <= g.length {
		return hash
	}
	return hash[len(hash)-g.length:]
}

// MatchesFingerprint 判断令牌中的指纹是否仍与账号当前密码一致
func (g *FingerprintGuard) MatchesFingerprint(user *models.User, fingerprint string) bool {
	current := g.FingerprintOf(user)
	if current == "" || fingerprint == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(current), []byte(fingerprint)) == 1
}

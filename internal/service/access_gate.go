package service

// AccessDecision 访问判定结果
type AccessDecision struct {
	Allowed bool
	Reason  error
}

// AuthorizeFullAccess 判断令牌能否访问需要完整会话的接口
// 流程中间态令牌（二次验证、重置密码）即使签名与有效期合法也会被拒绝
func AuthorizeFullAccess(claims *ScopedClaims) AccessDecision {
	if claims == nil {
		return AccessDecision{Reason: ErrTokenInvalid}
	}
	switch claims.Purpose {
	case PurposeSession:
		return AccessDecision{Allowed: true}
	case PurposeTwoFactorPending, PurposePasswordResetPending:
		return AccessDecision{Reason: ErrForbidden}
	default:
		return AccessDecision{Reason: ErrTokenInvalid}
	}
}

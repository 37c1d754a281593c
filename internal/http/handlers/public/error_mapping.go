package public

import (
	"errors"

	"github.com/devfolio-next/internal/http/response"
	"github.com/devfolio-next/internal/i18n"
	"github.com/devfolio-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

// localizedError 携带 i18n 键与参数的业务错误，例如密码策略错误。
type localizedError interface {
	Key() string
	Args() []interface{}
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	var localized localizedError
	if errors.Is(err, service.ErrWeakPassword) && errors.As(err, &localized) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), localized.Key(), localized.Args()...)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			// 网关/服务不可用类错误保留原因供日志排查
			var cause error
			if rule.code >= response.CodeInternal {
				cause = err
			}
			respondError(c, rule.code, rule.key, cause)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var tokenErrorRules = []mappedHandlerError{
	{target: service.ErrTokenExpired, code: response.CodeUnauthorized, key: "error.token_expired"},
	{target: service.ErrWrongPurpose, code: response.CodeUnauthorized, key: "error.token_wrong_purpose"},
	{target: service.ErrTokenInvalid, code: response.CodeUnauthorized, key: "error.token_invalid"},
}

var codeErrorRules = []mappedHandlerError{
	{target: service.ErrNoPendingCode, code: response.CodeBadRequest, key: "error.no_pending_code"},
	{target: service.ErrCodeExpired, code: response.CodeBadRequest, key: "error.code_expired"},
	{target: service.ErrCodeMismatch, code: response.CodeBadRequest, key: "error.code_mismatch"},
}

// 邮件类错误需排在其他规则之前，投递失败可能包装了收件人拒绝
var emailErrorRules = []mappedHandlerError{
	{target: service.ErrEmailDeliveryFailed, code: response.CodeBadGateway, key: "error.email_delivery_failed"},
	{target: service.ErrEmailServiceDisabled, code: response.CodeServiceUnavailable, key: "error.email_service_not_configured"},
	{target: service.ErrEmailServiceNotConfigured, code: response.CodeServiceUnavailable, key: "error.email_service_not_configured"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
}

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrCaptchaUnavailable, code: response.CodeBadRequest, key: "error.captcha_unavailable"},
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrEmailInUse, code: response.CodeConflict, key: "error.email_in_use"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
}

var loginErrorRules = concatMappedHandlerErrors(
	[]mappedHandlerError{
		{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.invalid_credentials"},
	},
	emailErrorRules,
)

var confirmTwoFactorErrorRules = concatMappedHandlerErrors(
	codeErrorRules,
	tokenErrorRules,
	[]mappedHandlerError{
		{target: service.ErrAccountNotFound, code: response.CodeUnauthorized, key: "error.token_invalid"},
	},
)

var recoveryVerifyErrorRules = codeErrorRules

var resetPasswordErrorRules = concatMappedHandlerErrors(
	[]mappedHandlerError{
		{target: service.ErrPasswordConfirmMismatch, code: response.CodeBadRequest, key: "error.password_confirm_mismatch"},
		{target: service.ErrStaleResetToken, code: response.CodeBadRequest, key: "error.reset_token_stale"},
		{target: service.ErrAccountNotFound, code: response.CodeNotFound, key: "error.account_not_found"},
	},
	tokenErrorRules,
)

var profileErrorRules = []mappedHandlerError{
	{target: service.ErrAccountNotFound, code: response.CodeNotFound, key: "error.account_not_found"},
	{target: service.ErrEmailInUse, code: response.CodeConflict, key: "error.email_in_use"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
}

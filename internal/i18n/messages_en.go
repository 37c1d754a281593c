package i18n

var messagesEN = map[string]string{
	"message.success":          "success",
	"message.registered":       "account created",
	"message.login_code_sent":  "a verification code was sent to your email",
	"message.login_success":    "login successful",
	"message.recovery_ack":     "if the email belongs to an account, a recovery code has been sent",
	"message.code_verified":    "code verified, you can now choose a new password",
	"message.password_changed": "password changed",
	"message.profile_updated":  "profile updated",

	"error.bad_request":                   "invalid request",
	"error.validation_failed":             "validation failed: %s",
	"error.internal":                      "internal server error",
	"error.not_found":                     "resource not found",
	"error.unauthorized":                  "authentication required",
	"error.forbidden":                     "this token cannot be used here",
	"error.auth_header_missing":           "missing Authorization header",
	"error.auth_header_invalid":           "Authorization header must be a Bearer token",
	"error.invalid_credentials":           "invalid email or password",
	"error.no_pending_code":               "there is no pending verification code, request a new one",
	"error.code_expired":                  "the verification code has expired, request a new one",
	"error.code_mismatch":                 "the verification code is not correct",
	"error.token_invalid":                 "invalid token",
	"error.token_expired":                 "the token has expired",
	"error.token_wrong_purpose":           "this token was not issued for this step",
	"error.reset_token_stale":             "this recovery link was already used",
	"error.account_not_found":             "account not found",
	"error.email_in_use":                  "the email is already registered",
	"error.email_invalid":                 "invalid email address",
	"error.password_weak":                 "the password does not meet the policy",
	"error.password_min_length":           "the password must be at least %d characters",
	"error.password_max_length":           "the password must be at most %d bytes",
	"error.password_require_upper":        "the password must contain an uppercase letter",
	"error.password_require_lower":        "the password must contain a lowercase letter",
	"error.password_require_number":       "the password must contain a number",
	"error.password_require_special":      "the password must contain a special character",
	"error.password_confirm_mismatch":     "the passwords do not match",
	"error.email_delivery_failed":         "the email could not be delivered, try again",
	"error.email_service_not_configured":  "email delivery is not configured",
	"error.rate_limited":                  "too many requests, retry in %d seconds",
	"error.rate_limit_unavailable":        "rate limiting is temporarily unavailable",
	"error.captcha_required":              "captcha is required",
	"error.captcha_invalid":               "captcha is not correct",
	"error.captcha_unavailable":           "captcha is not enabled",
	"error.register_failed":               "registration failed",
	"error.login_failed":                  "login failed",
	"error.recovery_failed":               "account recovery failed",
	"error.profile_load_failed":           "could not load the profile",
	"error.profile_update_failed":         "could not update the profile",
	"error.login_history_failed":          "could not load the login history",

	"validation.required":    "%s is required",
	"validation.email":       "%s must be a valid email address",
	"validation.min":         "%s must be at least %s characters",
	"validation.max":         "%s must be at most %s characters",
	"validation.len":         "%s must be exactly %s characters",
	"validation.numeric":     "%s must contain only digits",
	"validation.eqfield":     "%s must match %s",
	"validation.displayname": "%s contains characters that are not allowed, avoid symbols like < > / \\ & %% $",
	"validation.invalid":     "%s is invalid",
}

package shared

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/devfolio-next/internal/http/response"
	"github.com/devfolio-next/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 显示名称只允许字母（含重音字符）、数字与空格
var displayNamePattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N} ]*$`)

var registerValidatorsOnce sync.Once

// RegisterValidators 向 gin 的校验引擎注册自定义规则，字段名使用 json 标签。
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		engine.RegisterTagNameFunc(jsonFieldName)
		_ = engine.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
			return displayNamePattern.MatchString(fl.Field().String())
		})
	})
}

// BindJSON 绑定请求体，失败时写入聚合后的校验错误响应。
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		RespondBindError(c, err)
		return false
	}
	return true
}

// RespondBindError 将绑定错误转换为单条校验消息。
func RespondBindError(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		RespondErrorWithMsg(c, response.CodeBadRequest, ValidationMessage(locale, validationErrs), nil)
		return
	}
	RequestLog(c).Debugw("handler_bind_failed", "error", err)
	RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
}

// ValidationMessage 拼接全部字段错误，格式为 "validation failed: a, b"。
func ValidationMessage(locale string, errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fieldMessage(locale, fe))
	}
	return i18n.Sprintf(locale, "error.validation_failed", strings.Join(parts, ", "))
}

func fieldMessage(locale string, fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "email", "numeric", "displayname":
		return i18n.Sprintf(locale, "validation."+fe.Tag(), field)
	case "min", "max", "len":
		return i18n.Sprintf(locale, "validation."+fe.Tag(), field, fe.Param())
	case "eqfield":
		return i18n.Sprintf(locale, "validation.eqfield", field, toSnakeCase(fe.Param()))
	default:
		return i18n.Sprintf(locale, "validation.invalid", field)
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func toSnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 支持的语言
const (
	LocaleEN = "en"
	LocaleES = "es"

	DefaultLocale = LocaleEN
)

var (
	supportedLocales = []string{LocaleEN, LocaleES}
	localeMatcher    = language.NewMatcher([]language.Tag{language.English, language.Spanish})
)

var catalogs = map[string]map[string]string{
	LocaleEN: messagesEN,
	LocaleES: messagesES,
}

// ResolveLocale 从请求的 Accept-Language 解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return ParseLocale(lang)
	}
	return ParseLocale(c.GetHeader("Accept-Language"))
}

// ParseLocale 将 Accept-Language 头匹配到已支持语言
func ParseLocale(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(supportedLocales) {
		return DefaultLocale
	}
	return supportedLocales[index]
}

// T 翻译消息 key，缺失时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

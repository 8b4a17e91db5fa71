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
	LocaleVI = "vi"
	LocaleZH = "zh-CN"

	DefaultLocale = LocaleEN
)

var (
	supportedTags = []language.Tag{language.English, language.Vietnamese, language.SimplifiedChinese}
	tagLocales    = []string{LocaleEN, LocaleVI, LocaleZH}
	matcher       = language.NewMatcher(supportedTags)
)

// ResolveLocale 解析请求语言：query lang > X-Locale > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if value, ok := c.Get("locale"); ok {
		if locale, ok := value.(string); ok && locale != "" {
			return locale
		}
	}
	candidates := []string{
		c.Query("lang"),
		c.GetHeader("X-Locale"),
		c.GetHeader("Accept-Language"),
	}
	for _, raw := range candidates {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		return Normalize(raw)
	}
	return DefaultLocale
}

// Normalize 将任意语言标记归一到支持的语言
func Normalize(raw string) string {
	tags, _, err := language.ParseAcceptLanguage(strings.TrimSpace(raw))
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(tagLocales) {
		return DefaultLocale
	}
	return tagLocales[index]
}

// T 翻译消息，缺失时回退到默认语言，再缺失返回 key 本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

package service

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates/*.html
var builtinEmailTemplates embed.FS

// EmailTemplates 邮件模板加载器，按名称读取 <name>.html
type EmailTemplates struct {
	fsys fs.FS
}

// NewEmailTemplates 创建模板加载器，dir 为空时使用内置模板
func NewEmailTemplates(dir string) *EmailTemplates {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		sub, _ := fs.Sub(builtinEmailTemplates, "templates")
		return &EmailTemplates{fsys: sub}
	}
	return &EmailTemplates{fsys: os.DirFS(dir)}
}

// Render 读取模板并替换占位符
func (t *EmailTemplates) Render(name string, placeholders map[string]string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return "", ErrEmailTemplateNotFound
	}
	content, err := fs.ReadFile(t.fsys, name+".html")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrEmailTemplateNotFound, name)
	}
	return renderPlaceholders(string(content), placeholders), nil
}

// renderPlaceholders 将 {{Key}} 原样替换为对应值，未提供的占位符保留
func renderPlaceholders(content string, placeholders map[string]string) string {
	if len(placeholders) == 0 {
		return content
	}
	pairs := make([]string, 0, len(placeholders)*2)
	for key, value := range placeholders {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

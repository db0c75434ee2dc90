package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

//go:embed templates/*
var templatesFS embed.FS

// builtinTemplate is used by a FileTemplate with an empty path
const builtinTemplate = "templates/notification.html"

// Template is the source of a notification body. It is either an
// InlineTemplate or a FileTemplate.
type Template interface {
	parse() (*template.Template, error)
}

// InlineTemplate is template text given directly in the game config.
type InlineTemplate string

// FileTemplate is a path to a template file. The empty path selects the
// built-in notification template.
type FileTemplate string

func (t InlineTemplate) parse() (*template.Template, error) {
	tmpl, err := template.New("inline").Parse(string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to parse inline template: %w", err)
	}
	return tmpl, nil
}

func (t FileTemplate) parse() (*template.Template, error) {
	if t == "" {
		tmpl, err := template.ParseFS(templatesFS, builtinTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse built-in template: %w", err)
		}
		return tmpl, nil
	}

	content, err := os.ReadFile(string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	tmpl, err := template.New(filepath.Base(string(t))).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", t, err)
	}
	return tmpl, nil
}

// SelectTemplate returns the inline template when text is set, otherwise the
// file template at path (the built-in one when path is empty).
func SelectTemplate(text, path string) Template {
	if text != "" {
		return InlineTemplate(text)
	}
	return FileTemplate(path)
}

// Data is what a notification template can reference.
type Data struct {
	FromName string
	ToName   string
	GameName string
}

// Renderer renders notification bodies from a parsed template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses t once so that every message shares the same template
// and parse errors surface before anything is sent.
func NewRenderer(t Template) (*Renderer, error) {
	tmpl, err := t.parse()
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template for one giver/receiver pair.
func (r *Renderer) Render(data Data) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render notification for '%s': %w", data.FromName, err)
	}
	return buf.String(), nil
}

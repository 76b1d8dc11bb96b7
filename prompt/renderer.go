package prompt

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	// cdata makes a string safe inside a CDATA section by splitting any
	// closing delimiter across two sections.
	"cdata": func(s string) string {
		return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
	},
}

// Renderer renders a prompt context through one template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer builds a renderer for the named format (markdown, xml). A
// non-empty templatePath overrides the built-in template.
func NewRenderer(format, templatePath string) (*Renderer, error) {
	var text string
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", templatePath, err)
		}
		text = string(content)
		log.Debug("using custom template", "path", templatePath)
	} else {
		content, err := templateFS.ReadFile("templates/" + format + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("no built-in template for format %q", format)
		}
		text = string(content)
	}

	tmpl, err := template.New("prompt").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template against the context. The result always ends
// with a newline.
func (r *Renderer) Render(ctx Context) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, ctx); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

package config

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"github.com/charmbracelet/log"
)

//go:embed all:templates
var templateFS embed.FS

const (
	templatesRoot = "templates"
	// templateFile is the single file each template directory provides.
	// It renders to .quill.toml in the destination directory.
	templateFile = ".quill.toml.tmpl"
)

// DefaultTemplate is the template used by `quill init` without an argument.
const DefaultTemplate = "conventional"

// TemplateVars is the data passed to a config template.
type TemplateVars struct {
	ProjectName    string
	Language       string
	MaxHeaderWidth int
	MaxLineWidth   int
	Types          []TypeConfig
	// Scopes is written to [[scopes]], typically one per top-level directory.
	Scopes []ScopeConfig
}

// NewTemplateVars returns vars seeded from the built-in defaults.
func NewTemplateVars(projectName string) TemplateVars {
	d := NewDefaults()
	return TemplateVars{
		ProjectName:    projectName,
		Language:       d.Language,
		MaxHeaderWidth: d.MaxHeaderWidth,
		MaxLineWidth:   d.MaxLineWidth,
		Types:          d.Types,
	}
}

// ListTemplates returns the sorted names of the embedded config templates.
func ListTemplates() ([]string, error) {
	entries, err := templateFS.ReadDir(templatesRoot)
	if err != nil {
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && TemplateExists(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// TemplateExists reports whether name is an embedded config template.
func TemplateExists(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return false
	}
	_, err := fs.Stat(templateFS, path.Join(templatesRoot, name, templateFile))
	return err == nil
}

var templateFuncs = template.FuncMap{
	"toml": tomlString,
}

// RenderTemplate renders the named template to destDir/.quill.toml,
// creating destDir when needed. An existing file is left alone unless
// force is set; the returned slice lists the files actually written.
func RenderTemplate(name, destDir string, vars TemplateVars, force bool) ([]string, error) {
	if !TemplateExists(name) {
		return nil, fmt.Errorf("template %q not found", name)
	}

	src, err := templateFS.ReadFile(path.Join(templatesRoot, name, templateFile))
	if err != nil {
		return nil, fmt.Errorf("reading template %q: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("executing template %q: %w", name, err)
	}

	dest := filepath.Join(destDir, strings.TrimSuffix(templateFile, ".tmpl"))
	if _, err := os.Stat(dest); err == nil && !force {
		log.Debug("skipping existing file", "path", dest)
		return nil, nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", destDir, err)
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", dest, err)
	}
	log.Debug("wrote config", "path", dest, "template", name)
	return []string{dest}, nil
}

// tomlString quotes s as a TOML basic string.
func tomlString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

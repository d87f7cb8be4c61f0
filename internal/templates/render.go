// Package templates renders the HTML fragments patched into the globe page
// over Datastar SSE.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

//go:embed fragments/*.html
var fragments embed.FS

//go:embed pages/*.html
var pages embed.FS

var funcMap = template.FuncMap{
	// num prints a float the way a browser would: no trailing zeros.
	"num": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
	"km": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 0, 64)
	},
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a renderer from the *.html files in fragmentsDir.
func New(fragmentsDir string) (*Renderer, error) {
	tmpl, err := parseDir(fragmentsDir)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Embedded creates a renderer from the built-in fragments.
func Embedded() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fragments, "fragments/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns the shared renderer over the built-in fragments. The
// fragments are compiled into the binary, so a parse failure is a bug.
func Default() *Renderer {
	defaultOnce.Do(func() {
		r, err := Embedded()
		if err != nil {
			panic(err)
		}
		defaultRenderer = r
	})
	return defaultRenderer
}

func parseDir(dir string) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseGlob(filepath.Join(dir, "*.html"))
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToBuffer(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// MustRender renders a template and panics on error.
// Use only when you're certain the template exists.
func (r *Renderer) MustRender(name string, data any) string {
	s, err := r.Render(name, data)
	if err != nil {
		panic(err)
	}
	return s
}

// Reload reloads templates from disk (useful for dev hot-reload).
func (r *Renderer) Reload(fragmentsDir string) error {
	tmpl, err := parseDir(fragmentsDir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}

// Page returns a page by file name, preferring webDir/templates when the
// file exists there.
func Page(webDir, name string) ([]byte, error) {
	if webDir != "" {
		if b, err := os.ReadFile(filepath.Join(webDir, "templates", name)); err == nil {
			return b, nil
		}
	}
	return fs.ReadFile(pages, "pages/"+name)
}

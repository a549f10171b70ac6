package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

// Renderer turns a binding into artifact bytes. Renderers never touch disk.
type Renderer interface {
	Name() string
	Extension() string
	Render(b *models.Binding, letterhead []byte) ([]byte, error)
}

type Registry struct {
	renderers map[string]Renderer
}

func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		r.Register(renderer)
	}
	return r
}

// DefaultRegistry holds the built-in pdf, html and txt renderers.
func DefaultRegistry() *Registry {
	return NewRegistry(NewPDFRenderer(), NewHTMLRenderer(), NewTextRenderer())
}

func (r *Registry) Register(renderer Renderer) {
	r.renderers[renderer.Name()] = renderer
}

// Names lists registered formats in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Get(name string) (Renderer, error) {
	renderer, ok := r.renderers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", models.ErrUnsupportedFormat, name, strings.Join(r.Names(), ", "))
	}
	return renderer, nil
}

package public

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/localbites/localbites-services/api/internal/domain"
	"github.com/localbites/localbites-services/api/internal/interfaces/http/common"
)

// tagChoices is the fixed set of tags offered on the store form.
var tagChoices = []string{"Wifi", "Open Late", "Family Friendly", "Vegetarian", "Licensed"}

// Renderer turns a template name and page data into an HTML response. The
// concrete template set is a collaborator chosen at composition time.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data any) error
}

// viewData is the envelope every template receives.
type viewData struct {
	Title   string
	User    *common.AuthenticatedUser
	Flashes []Flash
	Data    any
}

// TemplateRenderer renders html/template files parsed from a glob.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses all templates matching glob.
func NewTemplateRenderer(glob string) (*TemplateRenderer, error) {
	funcs := template.FuncMap{
		"prev":       func(page int) int { return page - 1 },
		"next":       func(page int) int { return page + 1 },
		"starRange":  func() []int { return []int{5, 4, 3, 2, 1} },
		"tagChoices": func() []string { return tagChoices },
		"hasTag": func(store *domain.Store, tag string) bool {
			if store == nil {
				return false
			}
			for _, t := range store.Tags {
				if t == tag {
					return true
				}
			}
			return false
		},
	}
	tmpl, err := template.New("").Funcs(funcs).ParseGlob(glob)
	if err != nil {
		return nil, fmt.Errorf("parse templates %q: %w", glob, err)
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

func (t *TemplateRenderer) Render(w http.ResponseWriter, name string, data any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.templates.ExecuteTemplate(w, name, data)
}

// render executes a template with the standard envelope, pulling the
// principal and pending flashes from the request.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	var user *common.AuthenticatedUser
	if principal, ok := common.UserFromContext(r.Context()); ok {
		user = &principal
	}

	view := viewData{
		Title:   title,
		User:    user,
		Flashes: h.flash.Pop(w, r),
		Data:    data,
	}
	if err := h.renderer.Render(w, name, view); err != nil {
		h.logger.Printf("テンプレート %s の描画に失敗: %v", name, err)
	}
}

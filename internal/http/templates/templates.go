// Package templates contiene las páginas HTML del identity provider.
package templates

import (
	"embed"
	"html/template"
	"io"

	"github.com/dropDatabas3/authcore/internal/oauth"
)

//go:embed *.html
var files embed.FS

// Renderer implementa oauth.LoginRenderer con html/template (escape
// contextual: el action queda percent-encoded y los valores escapados).
type Renderer struct {
	login *template.Template
}

func New() (*Renderer, error) {
	t, err := template.ParseFS(files, "login.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{login: t}, nil
}

func (r *Renderer) RenderLogin(w io.Writer, page oauth.LoginPage) error {
	return r.login.Execute(w, page)
}

// Package site renders the game's HTML pages and serves their static assets.
package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/internal/domain/types"
)

// Error constants
var (
	ErrParse  = errors.New("page templates failed to parse")
	ErrRender = errors.New("page render failed")
)

// Register serves the embedded static assets under /static/.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// IndexPage is the data behind the guess form.
type IndexPage struct {
	MinLength int
	MaxLength int
}

// ResultsPage is the data behind the leaderboard page. Highlight is the
// canonical spelling the visitor just submitted, if any.
type ResultsPage struct {
	Leaderboard types.Leaderboard
	Highlight   string
}

// ErrorPage is shown when a request cannot be served.
type ErrorPage struct {
	Title   string
	Message string
}

// Pages renders the embedded templates.
type Pages struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"percent": func(p float64) string {
		return strconv.FormatFloat(p, 'f', 2, 64) + " %"
	},
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &Pages{tmpl: tmpl}, nil
}

// MustPages is NewPages for package initialisation; the templates are
// embedded, so a failure is a build defect.
func MustPages() *Pages {
	p, err := NewPages()
	if err != nil {
		panic(err)
	}
	return p
}

// Index renders the guess form.
func (p *Pages) Index(w io.Writer) error {
	return p.render(w, "index.html", IndexPage{MinLength: guess.MinLength, MaxLength: guess.MaxLength})
}

// Results renders the leaderboard.
func (p *Pages) Results(w io.Writer, page ResultsPage) error {
	return p.render(w, "results.html", page)
}

// Error renders an error page with the given status text.
func (p *Pages) Error(w io.Writer, status int) error {
	return p.render(w, "error.html", ErrorPage{
		Title:   http.StatusText(status),
		Message: "Jokin meni pieleen. Yritä hetken päästä uudelleen.",
	})
}

func (p *Pages) render(w io.Writer, name string, data any) error {
	if err := p.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRender, name, err)
	}
	return nil
}

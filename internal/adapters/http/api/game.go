package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/okian/ben/internal/adapters/http/site"
	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/pkg/logger"
)

// GameHandler serves the form, the submission endpoint and the results page.
type GameHandler struct {
	deps       Dependencies
	pages      *site.Pages
	trustProxy bool
	logger     logger.Logger
}

// NewGameHandler creates a new game handler.
func NewGameHandler(deps Dependencies, pages *site.Pages, cfg options) *GameHandler {
	return &GameHandler{
		deps:       deps,
		pages:      pages,
		trustProxy: cfg.trustProxy,
		logger:     cfg.logger,
	}
}

// HandleIndex handles GET / requests.
func (h *GameHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "GET, HEAD")
		return
	}
	h.render(w, r, "api.index", func(buf *bytes.Buffer) error { return h.pages.Index(buf) })
}

// HandleSubmit handles POST /submit. Rejected input redirects back to the
// form without any feedback; accepted input redirects to the results with
// the canonical spelling highlighted.
func (h *GameHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	// A body that does not parse is treated like a missing field.
	_ = r.ParseForm()
	raw := r.PostForm.Get("surname")

	canonical, err := h.deps.Submit(r.Context(), raw, clientIP(r, h.trustProxy))
	switch {
	case errors.Is(err, guess.ErrRejected):
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case err != nil:
		h.logger.Error(r.Context(), "submit failed", logger.Error(Wrap(op, err)))
		h.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/results?highlight="+url.QueryEscape(canonical), http.StatusFound)
}

// HandleResults handles GET /results?highlight=NAME requests.
func (h *GameHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.results"
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "GET, HEAD")
		return
	}

	lb, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "leaderboard read failed", logger.Error(Wrap(op, err)))
		h.errorPage(w, r, http.StatusInternalServerError)
		return
	}

	page := site.ResultsPage{Leaderboard: lb, Highlight: r.URL.Query().Get("highlight")}
	h.render(w, r, op, func(buf *bytes.Buffer) error { return h.pages.Results(buf, page) })
}

// render buffers the page so a template failure can still become a clean 500.
func (h *GameHandler) render(w http.ResponseWriter, r *http.Request, op string, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.logger.Error(r.Context(), "render failed", logger.Error(WrapKind(op, ErrRender, err)))
		h.errorPage(w, r, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *GameHandler) errorPage(w http.ResponseWriter, _ *http.Request, status int) {
	var buf bytes.Buffer
	if err := h.pages.Error(&buf, status); err != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

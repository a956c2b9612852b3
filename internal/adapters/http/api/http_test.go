package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/ben/internal/adapters/http/api"
	"github.com/okian/ben/internal/adapters/http/site"
	"github.com/okian/ben/internal/adapters/repository"
	service "github.com/okian/ben/internal/app"
	"github.com/okian/ben/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// failingDeps behaves like a service whose database is gone.
type failingDeps struct{}

var errDB = errors.New("database is locked")

func (failingDeps) Submit(context.Context, string, string) (string, error) {
	return "", errDB
}
func (failingDeps) Leaderboard(context.Context) (types.Leaderboard, error) {
	return types.Leaderboard{}, errDB
}
func (failingDeps) Health(context.Context) error { return errDB }

type staticStats map[string]any

func (s staticStats) GetStats() map[string]any { return s }

// recordingDeps captures the client address passed to Submit.
type recordingDeps struct {
	failingDeps
	clientIP string
}

func (r *recordingDeps) Submit(_ context.Context, _ string, ip string) (string, error) {
	r.clientIP = ip
	return "zmeskal", nil
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, staticStats{"started": true}, site.MustPages(), opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func postGuess(mux *http.ServeMux, surname string) *httptest.ResponseRecorder {
	form := url.Values{"surname": {surname}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(mux, req)
}

func TestGameRoutes(t *testing.T) {
	Convey("Given the routes over a real service", t, func() {
		svc := service.New(service.WithStore(repository.NewTreapStore(context.Background())))
		mux := newMux(svc)

		Convey("GET / renders the form", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, `name="surname"`)
		})

		Convey("Unknown paths are 404", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/nope", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("An accepted guess redirects to its highlighted result", func() {
			w := postGuess(mux, "  Zmeskal and more")
			So(w.Code, ShouldEqual, http.StatusFound)
			So(w.Header().Get("Location"), ShouldEqual, "/results?highlight=zmeskal")

			Convey("And the results page highlights it", func() {
				w := do(mux, httptest.NewRequest(http.MethodGet, "/results?highlight=zmeskal", nil))
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `class="highlight"`)
				So(w.Body.String(), ShouldContainSubstring, "100.00 %")
			})
		})

		Convey("A canonical with Nordic letters is URL-escaped in the redirect", func() {
			w := postGuess(mux, "Smeskäl")
			So(w.Code, ShouldEqual, http.StatusFound)
			So(w.Header().Get("Location"), ShouldEqual, "/results?highlight="+url.QueryEscape("smeskäl"))
		})

		Convey("Rejected guesses go back to the form and count nothing", func() {
			for _, raw := range []string{"", "Zmes", "Amesakal", "Zmeskal1"} {
				w := postGuess(mux, raw)
				So(w.Code, ShouldEqual, http.StatusFound)
				So(w.Header().Get("Location"), ShouldEqual, "/")
			}

			req := httptest.NewRequest(http.MethodPost, "/submit", nil)
			w := do(mux, req)
			So(w.Code, ShouldEqual, http.StatusFound)
			So(w.Header().Get("Location"), ShouldEqual, "/")

			lb, err := svc.Leaderboard(context.Background())
			So(err, ShouldBeNil)
			So(lb.TotalCount, ShouldEqual, int64(0))
		})

		Convey("GET /submit is not allowed", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/submit", nil))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
		})

		Convey("GET /api/leaderboard returns ranked JSON", func() {
			for _, raw := range []string{"Zmeskal", "Smeskal", "Zmeskal"} {
				So(postGuess(mux, raw).Code, ShouldEqual, http.StatusFound)
			}

			w := do(mux, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

			var lb types.Leaderboard
			So(json.Unmarshal(w.Body.Bytes(), &lb), ShouldBeNil)
			So(lb.TotalVariations, ShouldEqual, 2)
			So(lb.TotalCount, ShouldEqual, int64(3))
			So(lb.Entries[0].Surname, ShouldEqual, "zmeskal")
			So(lb.Entries[0].Percentage, ShouldEqual, 66.67)
			So(lb.Entries[1].Percentage, ShouldEqual, 33.33)
		})

		Convey("An empty leaderboard has an empty entries array", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"entries":[]`)
		})

		Convey("GET /health reports a connected database", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"status":"healthy","database":"connected"}`)
		})

		Convey("GET /stats returns the provider's stats", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/stats", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("GET /metrics exposes the custom registry", func() {
			_ = do(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
			w := do(mux, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ben_http_requests_total")
		})

		Convey("Health turns unhealthy once the store is closed", func() {
			svc.Stop()
			So(svc.Start(context.Background()), ShouldBeNil)
			svc.Stop()

			w := do(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)

			var body map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["status"], ShouldEqual, "unhealthy")
			So(body["error"], ShouldContainSubstring, "store closed")
		})
	})
}

func TestStorageFailures(t *testing.T) {
	Convey("Given routes over a failing store", t, func() {
		mux := newMux(failingDeps{})

		Convey("POST /submit renders a 500 page", func() {
			w := postGuess(mux, "Zmeskal")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
		})

		Convey("GET /results renders a 500 page", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/results", nil))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("GET /api/leaderboard returns a JSON error", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, `"code":"internal_error"`)
			So(w.Body.String(), ShouldContainSubstring, "api.get_leaderboard")
		})

		Convey("GET /health returns unhealthy with the error", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, `"status":"unhealthy"`)
			So(w.Body.String(), ShouldContainSubstring, "database is locked")
		})
	})
}

func TestClientAddress(t *testing.T) {
	cases := []struct {
		name  string
		trust bool
		xff   string
		addr  string
		want  string
	}{
		{name: "first forwarded entry", trust: true, xff: "203.0.113.7, 10.0.0.1", addr: "10.0.0.1:5555", want: "203.0.113.7"},
		{name: "single forwarded entry", trust: true, xff: "203.0.113.7", addr: "10.0.0.1:5555", want: "203.0.113.7"},
		{name: "forwarded ignored when untrusted", trust: false, xff: "203.0.113.7", addr: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "remote address without port", trust: true, addr: "10.0.0.2", want: "10.0.0.2"},
		{name: "nothing known", trust: true, addr: "", want: "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := &recordingDeps{}
			mux := newMux(deps, api.WithTrustProxy(tc.trust))

			req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("surname=Zmeskal"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.RemoteAddr = tc.addr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			w := do(mux, req)

			if w.Code != http.StatusFound {
				t.Fatalf("status %d, want 302", w.Code)
			}
			if deps.clientIP != tc.want {
				t.Errorf("client ip %q, want %q", deps.clientIP, tc.want)
			}
		})
	}
}

func TestError(t *testing.T) {
	err := api.WrapKind("api.op", api.ErrBadRequest, errDB)
	if !errors.Is(err, api.ErrBadRequest) || !errors.Is(err, errDB) {
		t.Fatalf("kind and cause must both match: %v", err)
	}
	if got := err.Error(); got != "api.op: bad request: database is locked" {
		t.Errorf("unexpected message %q", got)
	}
	if api.Wrap("api.op", nil) != nil {
		t.Error("Wrap(nil) must be nil")
	}
	if got := api.NewKind("api.op", api.ErrUnavailable).Error(); got != "api.op: service unavailable" {
		t.Errorf("unexpected message %q", got)
	}
}

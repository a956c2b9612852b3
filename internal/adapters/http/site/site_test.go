package site

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/ben/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPages(t *testing.T) {
	Convey("Given the embedded pages", t, func() {
		pages, err := NewPages()
		So(err, ShouldBeNil)

		Convey("The index page posts the surname field to /submit", func() {
			var buf bytes.Buffer
			So(pages.Index(&buf), ShouldBeNil)
			html := buf.String()
			So(html, ShouldContainSubstring, `action="/submit"`)
			So(html, ShouldContainSubstring, `name="surname"`)
			So(html, ShouldContainSubstring, `maxlength="15"`)
		})

		Convey("The results page lists entries and marks the highlight", func() {
			var buf bytes.Buffer
			err := pages.Results(&buf, ResultsPage{
				Highlight: "smeskal",
				Leaderboard: types.Leaderboard{
					Entries: []types.Entry{
						{Surname: "zmeskal", Count: 2, Percentage: 66.67},
						{Surname: "smeskal", Count: 1, Percentage: 33.33},
					},
					TotalVariations: 2,
					TotalCount:      3,
				},
			})
			So(err, ShouldBeNil)
			html := buf.String()
			So(html, ShouldContainSubstring, "66.67 %")
			So(html, ShouldContainSubstring, "33.33 %")
			So(strings.Count(html, `class="highlight"`), ShouldEqual, 1)
			So(strings.Index(html, "zmeskal"), ShouldBeLessThan, strings.Index(html, "smeskal"))

			highlighted := html[strings.Index(html, `class="highlight"`):]
			So(highlighted, ShouldContainSubstring, "smeskal")
		})

		Convey("The results page escapes a hostile highlight", func() {
			var buf bytes.Buffer
			So(pages.Results(&buf, ResultsPage{Highlight: "<script>"}), ShouldBeNil)
			So(buf.String(), ShouldNotContainSubstring, "<script>")
			So(buf.String(), ShouldContainSubstring, "Ei vielä arvauksia")
		})

		Convey("The error page shows the status text", func() {
			var buf bytes.Buffer
			So(pages.Error(&buf, http.StatusInternalServerError), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "Internal Server Error")
		})
	})
}

func TestRegister(t *testing.T) {
	Convey("Given a mux with the static assets registered", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		Convey("The stylesheet is served", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
		})

		Convey("Unknown assets are 404", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}

package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/screening/internal/adapters/http/api"
	"github.com/okian/screening/internal/app"
	"github.com/okian/screening/internal/domain/screening"
	"github.com/okian/screening/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newScreeningServer() *httptest.Server {
	svc := app.New()
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestGenerate(t *testing.T) {
	Convey("Given the case generator", t, func() {
		Convey("The same seed yields the same cases", func() {
			So(Generate(50, 0.3, 7), ShouldResemble, Generate(50, 0.3, 7))
		})

		Convey("A zero invalid ratio yields only valid cases", func() {
			for _, c := range Generate(200, 0, 1) {
				So(c.Invalid(), ShouldBeFalse)
				So(c.Total, ShouldBeBetweenOrEqual, 0, 100)
			}
		})

		Convey("A ratio of one yields only rejected cases", func() {
			for _, c := range Generate(200, 1, 2) {
				So(c.Invalid(), ShouldBeTrue)
				So(c.ErrorKey, ShouldBeIn, screening.CodeOutOfRangeScore, screening.CodeIncompleteGrades)
				So(c.Message, ShouldEqual, func() string {
					_, err := screening.Calculate(c.Input)
					return screening.FormatError(err)
				}())
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running screening server", t, func() {
		srv := newScreeningServer()
		defer srv.Close()

		out := filepath.Join(t.TempDir(), "cases", "run.json")
		cfg := Config{
			BaseURL:      srv.URL,
			Count:        120,
			Workers:      4,
			Timeout:      5 * time.Second,
			InvalidRatio: 0.25,
			Seed:         42,
			OutputFile:   out,
		}

		Convey("When the probe runs", func() {
			stats, err := Run(context.Background(), cfg, logger.Nop())

			Convey("Then every reply matches the local calculation", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 120)
				So(stats.Submitted, ShouldEqual, 120)
				So(stats.Accepted+stats.Rejected, ShouldEqual, 120)
				So(stats.Rejected, ShouldBeGreaterThan, 0)
				So(stats.Mismatched, ShouldEqual, 0)
			})

			Convey("And the generated cases are saved", func() {
				data, readErr := os.ReadFile(out)
				So(readErr, ShouldBeNil)
				var saved []Case
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 120)
			})
		})
	})

	Convey("Given a server that miscalculates", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("/screenings", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"total":1,"message":"nope"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		_, err := Run(context.Background(), Config{BaseURL: srv.URL, Count: 10, Workers: 2, Timeout: time.Second, Seed: 3}, logger.Nop())
		So(errors.Is(err, ErrMismatch), ShouldBeTrue)
	})

	Convey("Given an unhealthy server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := Run(context.Background(), Config{BaseURL: srv.URL, Count: 1, Timeout: time.Second}, logger.Nop())
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a valid case", t, func() {
		tc := Case{Index: 1, Total: 67.5, Message: "m"}

		So(verify(tc, reply{Status: http.StatusOK, Total: 67.5, Message: "m"}), ShouldBeNil)
		So(verify(tc, reply{Status: http.StatusOK, Total: 67.4, Message: "m"}), ShouldNotBeNil)
		So(verify(tc, reply{Status: http.StatusUnprocessableEntity, Message: "m"}), ShouldNotBeNil)
	})

	Convey("Given an invalid case", t, func() {
		tc := Case{Index: 2, ErrorKey: screening.CodeIncompleteGrades, Message: "m"}

		So(verify(tc, reply{Status: http.StatusUnprocessableEntity, Code: screening.CodeIncompleteGrades, Message: "m"}), ShouldBeNil)
		So(verify(tc, reply{Status: http.StatusUnprocessableEntity, Code: screening.CodeOutOfRangeScore, Message: "m"}), ShouldNotBeNil)
	})
}

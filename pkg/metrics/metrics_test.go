package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the default names", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "screening")
				So(manager.subsystem, ShouldEqual, "calculator")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithScoreBuckets([]float64{50, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.scoreBuckets, ShouldResemble, []float64{50, 100})
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "screening")
				So(manager.subsystem, ShouldEqual, "calculator")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When a screening is computed", func() {
			before := testutil.ToFloat64(globalManager.screeningsComputed)
			RecordScreeningComputed(67.5)

			Convey("Then the counter increases", func() {
				So(testutil.ToFloat64(globalManager.screeningsComputed), ShouldEqual, before+1)
			})
		})

		Convey("When validation failures are recorded", func() {
			c := globalManager.validationFailures.WithLabelValues("incomplete_grades")
			before := testutil.ToFloat64(c)
			RecordValidationFailure("incomplete_grades")
			RecordValidationFailure("incomplete_grades")

			Convey("Then they are counted by kind", func() {
				So(testutil.ToFloat64(c), ShouldEqual, before+2)
			})
		})

		Convey("When sessions change", func() {
			UpdateActiveSessions(3)

			Convey("Then the gauge reflects the count", func() {
				So(testutil.ToFloat64(globalManager.sessionsActive), ShouldEqual, 3)
				So(func() {
					RecordSessionCreated()
					RecordSessionExpired()
				}, ShouldNotPanic)
			})
		})

		Convey("When HTTP and system metrics are recorded", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordHTTPRequest("screenings", "POST", "200")
					RecordHTTPRequestDuration("screenings", "POST", "200", 1.5)
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("screenings", "POST", "client_error")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(8)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the custom registry gathers our metrics", func() {
			RecordScreeningComputed(10)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "screening_calculator_screenings_computed_total")
		})
	})
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the default namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "smartmatch")
				So(manager.subsystem, ShouldEqual, "engine")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("matching"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithRefreshInterval(3*time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.candidatesScored.Add(4)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.refreshInterval, ShouldEqual, 3*time.Second)
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 5, 10})

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_matching_candidates_scored_total")
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithHistogramBuckets(nil), WithRefreshInterval(0), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "smartmatch")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording match metrics", func() {
			before := testutil.ToFloat64(globalManager.candidatesScored)
			RecordCandidatesScored(5)
			RecordMatchRequest("stored")
			RecordConstraintViolation("over_budget")
			RecordConstraintViolation("over_budget")

			Convey("Then counters advance", func() {
				So(testutil.ToFloat64(globalManager.candidatesScored)-before, ShouldEqual, 5.0)
				So(testutil.ToFloat64(globalManager.constraintViolated.WithLabelValues("over_budget")), ShouldBeGreaterThanOrEqualTo, 2.0)
				So(testutil.ToFloat64(globalManager.matchRequests.WithLabelValues("stored")), ShouldBeGreaterThanOrEqualTo, 1.0)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(64)
			UpdateWorkerCount(4)
			UpdateProfilesTotal("caregiver", 12)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7.0)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64.0)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4.0)
				So(testutil.ToFloat64(globalManager.profilesTotal.WithLabelValues("caregiver")), ShouldEqual, 12.0)
			})
		})

		Convey("When recording histograms and error vectors", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordMatchLatency(1.5)
					RecordScore(92)
					RecordMatchError()
					RecordShardJob("pool")
					RecordWorkerProcessingLatency(0.4)
					RecordWorkerError()
					RecordStoreQueryLatency("list_caregivers", 3)
					RecordCacheLookup("hit")
					RecordHTTPRequest("match", "GET", "200")
					RecordHTTPRequestDuration("match", "GET", "200", 2)
					RecordErrorByComponent("store", "query_failed")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("match", "GET", "not_found")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then the private registry is returned", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

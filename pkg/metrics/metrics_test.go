package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithLatencyBuckets([]float64{1, 10, 100}),
				WithConstLabels(prometheus.Labels{"deployment": "test"}),
				WithRegistry(registry),
			)

			Convey("Then its collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.aggregations.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_aggregations_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options are empty", func() {
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithLatencyBuckets(nil), WithConstLabels(nil), WithRegistry(prometheus.NewRegistry()))

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "akreditasi")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.latencyBuckets, ShouldResemble, defaultLatencyBuckets)
				So(manager.constLabels, ShouldBeNil)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		So(func() {
			RecordAggregation(3)
			RecordSkippedNode("criterion")
			UpdateRankedPrograms(12)
			RecordSubmission("accepted", 2)
			RecordSubmission("locked", 1)
			RecordSnapshotLoad(40)
			UpdateQueueSize(3)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.03)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			RecordQueueEnqueueError()
			RecordQueueCoalesced()
			RecordQueueProcessingLatency(1)
			UpdateWorkerCount(4)
			UpdateWorkerActiveCount(1)
			RecordWorkerProcessingLatency(5)
			RecordWorkerError()
			RecordHTTPRequest("/rankings", "GET", "200")
			RecordHTTPRequestDuration("/rankings", "GET", "200", 1.5)
			RecordErrorByComponent("repository", "not_found")
		}, ShouldNotPanic)

		Convey("Then the registry exposes them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			joined := strings.Join(names, ",")
			So(joined, ShouldContainSubstring, "akreditasi_engine_evaluation_submissions_total")
			So(joined, ShouldContainSubstring, "akreditasi_engine_skipped_nodes_total")
			So(joined, ShouldContainSubstring, "akreditasi_engine_queue_coalesced_total")
		})
	})
}

func TestConcurrency(t *testing.T) {
	Convey("When recording metrics concurrently", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordAggregation(float64(j))
					UpdateQueueSize(j)
					RecordHTTPRequest("/test", "GET", "200")
				}
			}()
		}
		wg.Wait()

		Convey("Then no panics occurred", func() {
			So(true, ShouldBeTrue)
		})
	})
}

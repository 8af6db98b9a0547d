package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamwrite",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamwrite",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamwrite",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamwrite",
		Name:      "ws_connections",
		Help:      "Current number of live collaboration connections",
	})

	wsRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamwrite",
		Name:      "ws_rooms",
		Help:      "Current number of document rooms with at least one member",
	})

	wsMessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamwrite",
		Name:      "ws_messages_relayed_total",
		Help:      "Total number of edit messages relayed between room members",
	})

	wsDeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamwrite",
		Name:      "ws_delivery_failures_total",
		Help:      "Total number of per-member send failures during fan-out",
	})

	wsAdmissionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamwrite",
		Name:      "ws_admission_rejected_total",
		Help:      "Total number of connections rejected before joining a room",
	}, []string{"reason"})
)

// ConnectionOpened records one more live connection and the new room count.
func ConnectionOpened(rooms int) {
	wsConnections.Inc()
	wsRooms.Set(float64(rooms))
}

// ConnectionClosed records one less live connection and the new room count.
func ConnectionClosed(rooms int) {
	wsConnections.Dec()
	wsRooms.Set(float64(rooms))
}

func MessageRelayed() { wsMessagesRelayed.Inc() }

func DeliveryFailed() { wsDeliveryFailures.Inc() }

func AdmissionRejected(reason string) { wsAdmissionRejected.WithLabelValues(reason).Inc() }

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

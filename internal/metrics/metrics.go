// package metrics exposes Prometheus collectors for syncs, downloads and HTTP traffic
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "musicplayer"

// Sync kinds used as label values.
const (
	KindCreate = "create"
	KindUpdate = "update"
	KindDelete = "delete"
)

var (
	registerOnce sync.Once

	syncsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "syncs_total",
		Help:      "Total number of playlist syncs by kind and outcome",
	}, []string{"kind", "status"})
	syncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Histogram of playlist sync durations in seconds by kind",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s up to ~17m
	}, []string{"kind"})
	songsDownloaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "songs_downloaded_total",
		Help:      "Total number of songs downloaded and recorded",
	})
	songsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "songs_removed_total",
		Help:      "Total number of songs removed from the library",
	})
	downloadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "download_failures_total",
		Help:      "Total number of failed song downloads",
	})
	playlistsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "playlists",
		Help:      "Current number of playlists in the library",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations in seconds by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(syncsTotal, syncDuration, songsDownloaded, songsRemoved, downloadFailures,
			playlistsGauge, httpRequests, httpDuration)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// Sync lifecycle helpers
func IncSyncSucceeded(kind string) { syncsTotal.WithLabelValues(kind, "ok").Inc() }
func IncSyncFailed(kind string)    { syncsTotal.WithLabelValues(kind, "error").Inc() }
func ObserveSyncDuration(kind string, d time.Duration) {
	syncDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// Library helpers
func AddSongsDownloaded(n int) { songsDownloaded.Add(float64(n)) }
func AddSongsRemoved(n int)    { songsRemoved.Add(float64(n)) }
func IncDownloadFailures()     { downloadFailures.Inc() }
func SetPlaylists(n int)       { playlistsGauge.Set(float64(n)) }

// ObserveHTTPRequest records one served request. route is the registered pattern, not the raw path.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

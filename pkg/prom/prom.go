package prom

import (
	"sync"

	xhttp "github.com/gesthub/gesthub/pkg/http"
	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemNotas = "notas"
	SystemLinks = "links"
)
const (
	MetricNotaOperations      = "operations_total"
	MetricNotaFailures        = "failures_total"
	MetricNotaStatusRefreshed = "status_refreshed_total"
	MetricLinksOpened         = "opened_total"
	MetricLinkOpenFailures    = "open_failures_total"
	MetricLinkOpenDuration    = "open_duration_seconds"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers every metric the service reports. Until it runs the
// helpers below are no-ops.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	// Notas
	hasError(createCounterVec(SystemNotas, MetricNotaOperations, []string{"operation"}))
	hasError(createCounterVec(SystemNotas, MetricNotaFailures, []string{"operation", "kind"}))
	hasError(createCounter(SystemNotas, MetricNotaStatusRefreshed))

	// Links
	hasError(createCounterVec(SystemLinks, MetricLinksOpened, []string{"kind"}))
	hasError(createCounterVec(SystemLinks, MetricLinkOpenFailures, []string{"kind"}))
	hasError(createHistogramVec(SystemLinks, MetricLinkOpenDuration, []string{"kind"}))

	return err
}

func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

func AddCounter(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

func IncNotaOperation(operation string) {
	IncCounterVec(SystemNotas, MetricNotaOperations, operation)
}

func IncNotaFailure(operation, kind string) {
	IncCounterVec(SystemNotas, MetricNotaFailures, operation, kind)
}

func AddStatusRefreshed(changed int) {
	AddCounter(SystemNotas, MetricNotaStatusRefreshed, float64(changed))
}

func IncLinkOpened(kind string) {
	IncCounterVec(SystemLinks, MetricLinksOpened, kind)
}

func IncLinkOpenFailure(kind string) {
	IncCounterVec(SystemLinks, MetricLinkOpenFailures, kind)
}

func AddLinkOpenDuration(duration float64, kind string) {
	AddHistogramVec(SystemLinks, MetricLinkOpenDuration, duration, kind)
}

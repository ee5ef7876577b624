package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every LienPilot metric. A nil *AppMetrics is valid and
// records nothing, so services can run without a collector.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Lien deadlines and eligibility
	DeadlineCalculationsTotal CounterVec
	EligibilityChecksTotal    CounterVec

	// Notice of intent
	NOIDecisionsTotal    CounterVec
	LettersComposedTotal CounterVec
	DocumentsRendered    CounterVec
	RenderDuration       HistogramVec
	DocumentSizeBytes    HistogramVec
	DocumentPages        HistogramVec

	// Collections sequences
	SequencesGeneratedTotal CounterVec

	// Infrastructure
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	StorageOperationsTotal CounterVec
	EventsPublishedTotal   CounterVec
	MessageProcessDuration HistogramVec
	DBQueryDuration        HistogramVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRenderDurationBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultSizeBuckets           = []float64{1 << 10, 4 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20}
	DefaultPageBuckets           = []float64{1, 2, 3, 4, 6, 10}
	DefaultDBDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.DeadlineCalculationsTotal = collector.RegisterCounter("lien_deadline_calculations_total", "Lien deadline calculations by state and warning level", "state", "warning_level")
	m.EligibilityChecksTotal = collector.RegisterCounter("lien_eligibility_checks_total", "Lien eligibility checks", "state", "eligible")

	m.NOIDecisionsTotal = collector.RegisterCounter("noi_decisions_total", "Notice of intent send decisions", "urgency", "send")
	m.LettersComposedTotal = collector.RegisterCounter("noi_letters_composed_total", "Notice of intent letters composed", "state")
	m.DocumentsRendered = collector.RegisterCounter("noi_documents_rendered_total", "Notice of intent documents rendered", "source", "status")
	m.RenderDuration = collector.RegisterHistogram("noi_render_duration_seconds", "Notice of intent render duration", DefaultRenderDurationBuckets)
	m.DocumentSizeBytes = collector.RegisterHistogram("noi_document_size_bytes", "Rendered document size", DefaultSizeBuckets)
	m.DocumentPages = collector.RegisterHistogram("noi_document_pages", "Rendered document page count", DefaultPageBuckets)

	m.SequencesGeneratedTotal = collector.RegisterCounter("sequences_generated_total", "Collections sequences generated", "tone")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.StorageOperationsTotal = collector.RegisterCounter("storage_operations_total", "Object storage operations", "operation", "status")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Events published", "topic", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "topic")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording helpers. All accept a nil *AppMetrics.
// ─────────────────────────────────────────────────────────────────────────────

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordDeadline(m *AppMetrics, state, warningLevel string) {
	if m == nil {
		return
	}
	m.DeadlineCalculationsTotal.WithLabelValues(state, warningLevel).Inc()
}

func RecordEligibility(m *AppMetrics, state string, eligible bool) {
	if m == nil {
		return
	}
	m.EligibilityChecksTotal.WithLabelValues(state, strconv.FormatBool(eligible)).Inc()
}

func RecordNOIDecision(m *AppMetrics, urgency string, send bool) {
	if m == nil {
		return
	}
	m.NOIDecisionsTotal.WithLabelValues(urgency, strconv.FormatBool(send)).Inc()
}

func RecordLetter(m *AppMetrics, state string) {
	if m == nil {
		return
	}
	m.LettersComposedTotal.WithLabelValues(state).Inc()
}

// RecordRender counts a render. source is "render" or "cache"; size and
// pages are observed only for fresh renders that succeeded.
func RecordRender(m *AppMetrics, source string, duration time.Duration, size, pages int, err error) {
	if m == nil {
		return
	}
	m.DocumentsRendered.WithLabelValues(source, status(err)).Inc()
	if err != nil || source != "render" {
		return
	}
	m.RenderDuration.WithLabelValues().Observe(duration.Seconds())
	m.DocumentSizeBytes.WithLabelValues().Observe(float64(size))
	m.DocumentPages.WithLabelValues().Observe(float64(pages))
}

func RecordSequence(m *AppMetrics, tone string) {
	if m == nil {
		return
	}
	m.SequencesGeneratedTotal.WithLabelValues(tone).Inc()
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordStorageOp(m *AppMetrics, operation string, err error) {
	if m == nil {
		return
	}
	m.StorageOperationsTotal.WithLabelValues(operation, status(err)).Inc()
}

func RecordPublish(m *AppMetrics, topic string, err error) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(topic, status(err)).Inc()
}

func RecordMessage(m *AppMetrics, topic string, duration time.Duration) {
	if m == nil {
		return
	}
	m.MessageProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func RecordDBQuery(m *AppMetrics, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues("postgres", "query_error").Inc()
	}
}

func RecordHealth(m *AppMetrics, component string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending

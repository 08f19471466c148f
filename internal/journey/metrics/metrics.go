package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the journey and its collaborators.
type Metrics struct {
	JourneysStarted  prometheus.Counter
	StageTransitions *prometheus.CounterVec
	Verdicts         *prometheus.CounterVec
	VersionConflicts prometheus.Counter

	// Media catalogue degradation
	MediaFallbacks   *prometheus.CounterVec
	MediaUnavailable *prometheus.CounterVec

	FaceEnrolments       prometheus.Counter
	VerificationFailures *prometheus.CounterVec

	DocumentsIngested  *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec

	DocumentBatchLatency prometheus.Histogram
}

// New registers the journey metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the journey metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JourneysStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "saathi_journeys_started_total",
			Help: "Total number of journeys started",
		}),
		StageTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saathi_stage_transitions_total",
			Help: "Total stage transitions by origin and destination stage",
		}, []string{"from", "to"}),
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saathi_eligibility_verdicts_total",
			Help: "Total eligibility verdicts by status",
		}, []string{"status"}),
		VersionConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "saathi_session_version_conflicts_total",
			Help: "Total session writes rejected for a stale version",
		}),
		MediaFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saathi_media_fallbacks_total",
			Help: "Total media resolutions served by a substitute asset",
		}, []string{"requested"}),
		MediaUnavailable: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saathi_media_unavailable_total",
			Help: "Total media resolutions with no valid asset",
		}, []string{"requested"}),
		FaceEnrolments: f.NewCounter(prometheus.CounterOpts{
			Name: "saathi_face_enrolments_total",
			Help: "Total sessions that captured a face reference",
		}),
		VerificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saathi_face_verification_failures_total",
			Help: "Total rejected captures by reason",
		}, []string{"reason"}), // reason: "mismatch", "verify_error"
		DocumentsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saathi_documents_ingested_total",
			Help: "Total documents extracted successfully by type",
		}, []string{"type"}),
		ExtractionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saathi_document_extraction_failures_total",
			Help: "Total documents the extractor could not process by type",
		}, []string{"type"}),
		DocumentBatchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "saathi_document_batch_duration_seconds",
			Help:    "Duration of multi-document uploads including extraction",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementJourneyStarted() {
	if m != nil {
		m.JourneysStarted.Inc()
	}
}

func (m *Metrics) IncrementStageTransition(from, to string) {
	if m != nil {
		m.StageTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementVerdict(status string) {
	if m != nil {
		m.Verdicts.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementVersionConflict() {
	if m != nil {
		m.VersionConflicts.Inc()
	}
}

// IncrementMediaFallback records a substitution. Only the requested key is a
// label; substitutes vary with catalogue contents.
func (m *Metrics) IncrementMediaFallback(requested, _ string) {
	if m != nil {
		m.MediaFallbacks.WithLabelValues(requested).Inc()
	}
}

func (m *Metrics) IncrementMediaUnavailable(requested string) {
	if m != nil {
		m.MediaUnavailable.WithLabelValues(requested).Inc()
	}
}

func (m *Metrics) IncrementFaceEnrolled() {
	if m != nil {
		m.FaceEnrolments.Inc()
	}
}

func (m *Metrics) IncrementVerificationFailure(reason string) {
	if m != nil {
		m.VerificationFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementDocumentIngested(docType string) {
	if m != nil {
		m.DocumentsIngested.WithLabelValues(docType).Inc()
	}
}

func (m *Metrics) IncrementExtractionFailure(docType string) {
	if m != nil {
		m.ExtractionFailures.WithLabelValues(docType).Inc()
	}
}

func (m *Metrics) ObserveDocumentBatch(d time.Duration) {
	if m != nil {
		m.DocumentBatchLatency.Observe(d.Seconds())
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"quiz-progress-service/internal/domain"
)

// Recorder exposes engine counters to Prometheus.
type Recorder struct {
	persistenceFailures *prometheus.CounterVec
	resultsSaved        *prometheus.CounterVec
	resets              *prometheus.CounterVec
	activeAttempts      prometheus.Gauge
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_persistence_failures_total",
			Help: "Swallowed storage read/write failures by document and operation.",
		}, []string{"document", "op"}),
		resultsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_results_saved_total",
			Help: "Quiz results saved by badge tier.",
		}, []string{"badge"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_resets_total",
			Help: "User-triggered resets by document.",
		}, []string{"document"}),
		activeAttempts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_active_attempts",
			Help: "Quiz attempts currently attached to a websocket.",
		}),
	}
	reg.MustRegister(r.persistenceFailures, r.resultsSaved, r.resets, r.activeAttempts)
	return r
}

func (r *Recorder) PersistenceFailure(document, op string) {
	r.persistenceFailures.WithLabelValues(document, op).Inc()
}

func (r *Recorder) ResultSaved(badge domain.Badge) {
	r.resultsSaved.WithLabelValues(string(badge)).Inc()
}

func (r *Recorder) Reset(document string) {
	r.resets.WithLabelValues(document).Inc()
}

func (r *Recorder) AttemptOpened() { r.activeAttempts.Inc() }

func (r *Recorder) AttemptClosed() { r.activeAttempts.Dec() }

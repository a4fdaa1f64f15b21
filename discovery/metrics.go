package discovery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded by MetricsMonitor.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// MetricsMonitor records Prometheus metrics for discovery runs.
type MetricsMonitor struct {
	runs          *prometheus.CounterVec
	stages        *prometheus.CounterVec
	stageFailures *prometheus.CounterVec
	sourceWords   *prometheus.CounterVec
	duration      prometheus.Histogram
}

var _ Monitor = (*MetricsMonitor)(nil)

// NewMetricsMonitor creates the discovery metrics and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetricsMonitor(reg prometheus.Registerer) (*MetricsMonitor, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &MetricsMonitor{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wordhoard",
				Subsystem: "discovery",
				Name:      "runs_total",
				Help:      "Discovery runs by outcome",
			},
			[]string{"outcome"},
		),
		stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wordhoard",
				Subsystem: "discovery",
				Name:      "stage_runs_total",
				Help:      "Stages entered",
			},
			[]string{"stage"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wordhoard",
				Subsystem: "discovery",
				Name:      "stage_failures_total",
				Help:      "Stage failures recorded in run state",
			},
			[]string{"stage"},
		),
		sourceWords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wordhoard",
				Subsystem: "discovery",
				Name:      "source_words_total",
				Help:      "Candidate words contributed per source before deduplication",
			},
			[]string{"source"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "wordhoard",
				Subsystem: "discovery",
				Name:      "run_duration_seconds",
				Help:      "Discovery run latency",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.runs, m.stages, m.stageFailures, m.sourceWords, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *MetricsMonitor) Start(_ string, _ Request) {}

func (m *MetricsMonitor) EnterStage(_ string, stage Stage) {
	m.stages.WithLabelValues(stage.String()).Inc()
}

func (m *MetricsMonitor) StageFailed(_ string, stage Stage, _ error) {
	m.stageFailures.WithLabelValues(stage.String()).Inc()
}

func (m *MetricsMonitor) Finish(_ string, resp *Response, err error, elapsed time.Duration) {
	m.duration.Observe(elapsed.Seconds())

	switch {
	case err != nil:
		m.runs.WithLabelValues(OutcomeFailed).Inc()
	case resp != nil && len(resp.FinalWords) < resp.TargetWordCount:
		m.runs.WithLabelValues(OutcomePartial).Inc()
	default:
		m.runs.WithLabelValues(OutcomeSuccess).Inc()
	}

	if resp != nil {
		for source, n := range resp.SourceCounts {
			m.sourceWords.WithLabelValues(source).Add(float64(n))
		}
	}
}

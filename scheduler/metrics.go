package scheduler

import "github.com/prometheus/client_golang/prometheus"

const (
	stageReplenish = "replenish"
	stageSelect    = "select"
	stageAct       = "act"
	stageRecord    = "record"
)

type metrics struct {
	cycles     prometheus.Counter
	lovedCount prometheus.Counter
	duplicates prometheus.Counter
	errcount   *prometheus.CounterVec
	unloved    prometheus.Gauge
}

// RegisterMetrics attaches cycle metrics to the given registry.
// Without it the scheduler runs unmetered.
func (s *Scheduler) RegisterMetrics(prom prometheus.Registerer) {
	m := &metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lovebot_cycles_total",
			Help: "love cycles started",
		}),
		lovedCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lovebot_loved_total",
			Help: "identities loved",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lovebot_duplicate_retries_total",
			Help: "fast retries after duplicate content errors",
		}),
		errcount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lovebot_cycle_errors_total",
			Help: "cycle failures by stage",
		}, []string{"stage"}),
		unloved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lovebot_unloved_identities",
			Help: "size of the unloved identity pool",
		}),
	}

	prom.MustRegister(m.cycles, m.lovedCount, m.duplicates, m.errcount, m.unloved)
	s.metrics = m
}

func (m *metrics) cycleStarted() {
	if m == nil {
		return
	}
	m.cycles.Add(1)
}

func (m *metrics) loved() {
	if m == nil {
		return
	}
	m.lovedCount.Add(1)
}

func (m *metrics) duplicateRetry() {
	if m == nil {
		return
	}
	m.duplicates.Add(1)
}

func (m *metrics) cycleFailed(stage string) {
	if m == nil {
		return
	}
	m.errcount.WithLabelValues(stage).Add(1)
}

func (m *metrics) setUnloved(count int64) {
	if m == nil {
		return
	}
	m.unloved.Set(float64(count))
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Lock operation outcomes used as metric label values.
const (
	ResultAcquired = "acquired"
	ResultConflict = "conflict"
	ResultReleased = "released"
	ResultNotFound = "not_found"
	ResultDenied   = "denied"
)

// Metrics records lock operation outcomes.
type Metrics interface {
	IncLockRequests(result string)
	IncUnlockRequests(result string)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncLockRequests(string)   {}
func (Noop) IncUnlockRequests(string) {}

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	lockRequests   *prometheus.CounterVec
	unlockRequests *prometheus.CounterVec
	activeLocks    prometheus.GaugeFunc
	once           sync.Once
}

// NewProm builds and registers the Prometheus collectors. activeCount is
// sampled on every scrape to populate the active-locks gauge.
func NewProm(namespace string, activeCount func() int) *Prom {
	p := &Prom{
		lockRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_requests_total",
			Help:      "Lock acquisition attempts by outcome",
		}, []string{"result"}),
		unlockRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unlock_requests_total",
			Help:      "Lock release attempts by outcome",
		}, []string{"result"}),
		activeLocks: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_locks",
			Help:      "Number of currently live locks",
		}, func() float64 {
			return float64(activeCount())
		}),
	}
	p.register()
	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		prometheus.MustRegister(p.lockRequests, p.unlockRequests, p.activeLocks)
	})
}

func (p *Prom) IncLockRequests(result string) {
	p.lockRequests.WithLabelValues(result).Inc()
}

func (p *Prom) IncUnlockRequests(result string) {
	p.unlockRequests.WithLabelValues(result).Inc()
}

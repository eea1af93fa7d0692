// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomePartial    = "partial"
	OutcomeNoResponse = "no_response"
	OutcomeStatus     = "error_status"
	OutcomeSecurity   = "security"
	OutcomeFault      = "fault"
)

// Metrics counts engine calls. A nil *Metrics records nothing.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Entries  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "powersnmpquery",
				Name:      "requests_total",
				Help:      "Total number of GET and WALK calls",
			},
			[]string{"operation", "version", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "powersnmpquery",
				Name:      "request_duration_seconds",
				Help:      "Time taken by one GET or WALK call",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 3, 10, 30},
			},
			[]string{"operation", "version"},
		),
		Entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "powersnmpquery",
				Name:      "result_entries_total",
				Help:      "Result entries returned, split into values and coded errors",
			},
			[]string{"operation", "kind"}, // value or error
		),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Requests, m.Duration, m.Entries} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func (m *Metrics) observe(operation string, version SNMPVersion, outcome string, took time.Duration, result []string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, version.String(), outcome).Inc()
	m.Duration.WithLabelValues(operation, version.String()).Observe(took.Seconds())
	errorsCount := 0
	for _, r := range result {
		if IsErrorEntry(r) {
			errorsCount++
		}
	}
	m.Entries.WithLabelValues(operation, "value").Add(float64(len(result) - errorsCount))
	m.Entries.WithLabelValues(operation, "error").Add(float64(errorsCount))
}

// outcomeOf labels a failed call by its error kind.
func outcomeOf(err error) string {
	var (
		noResp NoResponseError
		stErr  ProtocolStatusError
		secErr SecurityError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &noResp):
		return OutcomeNoResponse
	case errors.As(err, &stErr):
		return OutcomeStatus
	case errors.As(err, &secErr):
		return OutcomeSecurity
	}
	return OutcomeFault
}

package measure

import (
	"sync"
	"time"
)

// DefaultMeasure keeps one metric per step name.
type DefaultMeasure struct {
	Steps map[string]Metric

	totalDuration time.Duration
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	mt := &DefaultMetric{
		mu: &sync.Mutex{},
	}
	m.Steps[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	return m.Steps[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	return m.Steps
}

func (m *DefaultMeasure) SetTotalDuration(elapsed time.Duration) {
	m.totalDuration = elapsed
}

func (m *DefaultMeasure) TotalDuration() time.Duration {
	return m.totalDuration
}

var _ Measure = (*DefaultMeasure)(nil)

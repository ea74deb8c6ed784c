package measure

import "time"

// Measure collects one metric per step.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
	SetTotalDuration(elapsed time.Duration)
	TotalDuration() time.Duration
}

// Metric accumulates durations for one step.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AVGDuration() time.Duration
	Count() int64
	SetTotalDuration(elapsed time.Duration)
	GetTotalDuration() time.Duration
}

package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMetric is matched by every error about an unsupported metric name.
var ErrInvalidMetric = errors.New("rules: invalid metric")

// MetricError names the rejected metric.
type MetricError struct {
	Name string
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("rules: invalid metric %q (use %s)", e.Name, strings.Join(metricNames(), "|"))
}

func (e *MetricError) Unwrap() error { return ErrInvalidMetric }

// Metric selects the rule measure a threshold applies to.
type Metric string

const (
	Support    Metric = "support"
	Confidence Metric = "confidence"
	Lift       Metric = "lift"
	Leverage   Metric = "leverage"
	Conviction Metric = "conviction"
)

// Metrics lists the supported metrics.
func Metrics() []Metric {
	return []Metric{Support, Confidence, Lift, Leverage, Conviction}
}

func metricNames() []string {
	ms := Metrics()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}

// ParseMetric maps a user supplied name to a Metric.
func ParseMetric(name string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Metrics() {
		if m == known {
			return m, nil
		}
	}
	return "", &MetricError{Name: name}
}

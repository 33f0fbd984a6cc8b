package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/basketloom-cli/internal/rules"
)

// ErrInvalidParameter is matched by every parameter validation failure.
var ErrInvalidParameter = errors.New("pipeline: invalid parameter")

// ParamError describes one rejected parameter. Err, when set, is the
// underlying package error (e.g. rules.ErrInvalidMetric).
type ParamError struct {
	Name   string
	Value  any
	Reason string
	Err    error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidParameter, e.Err}
	}
	return []error{ErrInvalidParameter}
}

// Params is the configuration surface of a mining run.
type Params struct {
	MinSupport   float64      `json:"min_support" yaml:"min_support"`
	Metric       rules.Metric `json:"metric" yaml:"metric"`
	MinThreshold float64      `json:"min_threshold" yaml:"min_threshold"`
	MaxLen       int          `json:"max_len,omitempty" yaml:"max_len,omitempty"`
	Workers      int          `json:"-" yaml:"-"`
}

// DefaultParams returns the thresholds tuned for the Online Retail dataset.
func DefaultParams() Params {
	return Params{MinSupport: 0.03, Metric: rules.Lift, MinThreshold: 3}
}

// Validate reports every out-of-range parameter. The result matches
// ErrInvalidParameter, and ErrInvalidMetric when the metric is unknown.
func (p Params) Validate() error {
	var errs []error
	if !inUnit(p.MinSupport) {
		errs = append(errs, &ParamError{Name: "min_support", Value: p.MinSupport, Reason: "must be in (0, 1]"})
	}
	m, err := rules.ParseMetric(string(p.Metric))
	if err != nil {
		errs = append(errs, &ParamError{Name: "metric", Value: p.Metric, Reason: "unsupported metric", Err: err})
	} else if reason := thresholdProblem(m, p.MinThreshold); reason != "" {
		errs = append(errs, &ParamError{Name: "min_threshold", Value: p.MinThreshold, Reason: reason})
	}
	if p.MaxLen < 0 {
		errs = append(errs, &ParamError{Name: "max_len", Value: p.MaxLen, Reason: "must be >= 0"})
	}
	if p.Workers < 0 {
		errs = append(errs, &ParamError{Name: "workers", Value: p.Workers, Reason: "must be >= 0"})
	}
	return errors.Join(errs...)
}

func inUnit(v float64) bool { return v > 0 && v <= 1 }

// thresholdProblem checks the threshold against the range the metric can reach.
func thresholdProblem(m rules.Metric, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "must be finite"
	}
	switch m {
	case rules.Support, rules.Confidence:
		if !inUnit(v) {
			return fmt.Sprintf("must be in (0, 1] for %s", m)
		}
	case rules.Lift, rules.Conviction:
		if v <= 0 {
			return fmt.Sprintf("must be > 0 for %s", m)
		}
	case rules.Leverage:
		if v < -0.25 || v > 0.25 {
			return "must be in [-0.25, 0.25] for leverage"
		}
	}
	return ""
}

package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fcff_engine/pkg/core/alias"
	"fcff_engine/pkg/core/extract"
)

// MetricSet is the canonical metric map for one reporting period. Required
// metrics are guaranteed present and finite when Reconcile returns without
// error; extended metrics appear when the source carried them.
type MetricSet map[alias.MetricID]float64

// Estimation records that a required metric was filled by a fallback formula
// instead of a direct field match. Estimations are facts worth surfacing, not
// errors.
type Estimation struct {
	Metric alias.MetricID `json:"metric"`
	Method string         `json:"method"`
}

// MissingMetricsError reports the required metrics that stayed unset after
// every fallback was exhausted.
type MissingMetricsError struct {
	Missing []alias.MetricID
}

func (e *MissingMetricsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = string(m)
	}
	return fmt.Sprintf("missing required financial metrics: %s", strings.Join(names, ", "))
}

// Reconciler resolves one raw record into the canonical metric set.
type Reconciler struct {
	resolver *alias.Resolver
}

func NewReconciler(resolver *alias.Resolver) *Reconciler {
	return &Reconciler{resolver: resolver}
}

// Reconcile maps every raw field through the alias resolver, then runs the
// estimator chain for any required metric still unset. The first field that
// resolves to a metric and parses to a finite number wins; later fields never
// overwrite it. Required metrics carry absolute values, since extraction
// yields magnitudes whose sign conventions vary by source.
func (r *Reconciler) Reconcile(rec *extract.RawRecord) (MetricSet, []Estimation, error) {
	set := MetricSet{}

	for _, field := range rec.Fields {
		metric, ok := r.resolver.Resolve(field.Name)
		if !ok {
			continue
		}
		if _, done := set[metric]; done {
			continue
		}
		value, ok := ParseNumber(field.Value)
		if !ok {
			continue
		}
		if isRequired(metric) {
			value = math.Abs(value)
		}
		set[metric] = value
	}

	var estimations []Estimation
	for _, metric := range alias.RequiredMetrics {
		if _, done := set[metric]; done {
			continue
		}
		value, method, ok := estimate(metric, rec, set)
		if !ok {
			continue
		}
		set[metric] = value
		estimations = append(estimations, Estimation{Metric: metric, Method: method})
	}

	var missing []alias.MetricID
	for _, metric := range alias.RequiredMetrics {
		if v, done := set[metric]; !done || math.IsNaN(v) || math.IsInf(v, 0) {
			missing = append(missing, metric)
		}
	}
	if len(missing) > 0 {
		return nil, estimations, &MissingMetricsError{Missing: missing}
	}
	return set, estimations, nil
}

func isRequired(metric alias.MetricID) bool {
	for _, m := range alias.RequiredMetrics {
		if m == metric {
			return true
		}
	}
	return false
}

// ParseNumber converts a raw field value to a float. Strings may carry comma
// thousand separators and surrounding whitespace.
func ParseNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return finite(v)
	case int:
		return float64(v), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(parsed)
	}
	return 0, false
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

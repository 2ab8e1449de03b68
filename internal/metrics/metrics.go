// Package metrics provides a lightweight metric emitter for functions.
// Each Flush writes one structured JSON line to stdout; Cloud Logging
// log-based metrics extract counters and distributions from the payload,
// so no metric API calls happen on the invocation path.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Metric units recorded alongside each value.
const (
	UnitMilliseconds = "ms"
	UnitBytes        = "bytes"
	UnitCount        = "count"
	UnitNone         = "none"
)

// metricValue is one named measurement in the emitted document.
type metricValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Recorder accumulates labels, metrics, and properties for a single flush.
// It is NOT safe for concurrent use from multiple goroutines; create one
// per operation.
type Recorder struct {
	namespace  string
	labels     map[string]string
	metrics    map[string]metricValue
	properties map[string]interface{}
}

var (
	// serviceName is cached from K_SERVICE at first use.
	serviceName string
	initOnce    sync.Once
)

func initServiceName() {
	serviceName = os.Getenv("K_SERVICE")
}

// New creates a Recorder with the given metric namespace. The service name
// from the runtime environment is added as a label automatically.
func New(namespace string) *Recorder {
	initOnce.Do(initServiceName)
	r := &Recorder{
		namespace:  namespace,
		labels:     make(map[string]string),
		metrics:    make(map[string]metricValue),
		properties: make(map[string]interface{}),
	}
	if serviceName != "" {
		r.labels["service"] = serviceName
	}
	return r
}

// Label adds a label key-value pair. Labels become filterable dimensions on
// the extracted log-based metric.
func (r *Recorder) Label(key, value string) *Recorder {
	r.labels[key] = value
	return r
}

// Metric records a named measurement with a unit.
// Use the Unit* constants (UnitMilliseconds, UnitBytes, UnitCount, UnitNone).
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricValue{Value: value, Unit: unit}
	return r
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Property adds a non-metric field to the document. Properties are searchable
// in Logs Explorer but do not feed any metric.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// Flush serializes the metric document as a single JSON line to stdout.
// After flushing, the Recorder should not be reused.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	doc := map[string]interface{}{
		"metricsNamespace": r.namespace,
		"timestampMs":      time.Now().UnixMilli(),
	}

	metricsDoc := make(map[string]metricValue, len(r.metrics))
	for k, v := range r.metrics {
		metricsDoc[k] = v
	}
	doc["metrics"] = metricsDoc

	if len(r.labels) > 0 {
		doc["labels"] = r.labels
	}
	for k, v := range r.properties {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		// Best-effort: note the failure on stderr and move on.
		fmt.Fprintf(os.Stderr, "metrics: failed to marshal document: %v\n", err)
		return
	}

	fmt.Fprintln(os.Stdout, string(data))
}

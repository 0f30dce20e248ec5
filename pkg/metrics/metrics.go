// Package metrics records lifecycle step and operation outcomes in Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/systemstart/gaia-node-manager/pkg/runner"
)

const (
	namespace = "gaianode"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder holds the lifecycle collectors. A nil *Recorder records nothing.
type Recorder struct {
	steps        *prometheus.CounterVec   // steps run by operation, step and result
	stepDuration *prometheus.HistogramVec // wall time per step
	operations   *prometheus.CounterVec   // operations by result
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Lifecycle steps run, by operation, step and result",
		}, []string{"operation", "step", "result"}),

		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of lifecycle steps",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"operation", "step"}),

		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Lifecycle operations run, by result",
		}, []string{"operation", "result"}),
	}

	for _, c := range []prometheus.Collector{r.steps, r.stepDuration, r.operations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering lifecycle metrics: %w", err)
		}
	}
	return r, nil
}

// OperationFinished counts one finished lifecycle operation.
func (r *Recorder) OperationFinished(operation string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, result(err)).Inc()
}

// Steps returns a runner.Observer that labels steps with operation.
func (r *Recorder) Steps(operation string) runner.Observer {
	if r == nil {
		return nil
	}
	return stepObserver{r: r, operation: operation}
}

type stepObserver struct {
	r         *Recorder
	operation string
}

func (o stepObserver) StepFinished(step string, elapsed time.Duration, err error) {
	o.r.steps.WithLabelValues(o.operation, step, result(err)).Inc()
	o.r.stepDuration.WithLabelValues(o.operation, step).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// WriteTextfile writes every metric gathered by g to filename in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(filename string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(filename, g); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

package crud

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tinoosan/awqaf/internal/errs"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "awqaf",
		Name:      "service_operations_total",
		Help:      "Total number of entity operations by outcome",
	},
	[]string{"entity", "op", "result"},
)

// observe counts the outcome of op and returns err unchanged.
func (s *service[K, T, F]) observe(op string, err error) error {
	operationsTotal.WithLabelValues(s.entity, op, Result(err)).Inc()
	return err
}

// Result classifies err into a metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrInvalid):
		return "invalid"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	case errors.Is(err, errs.ErrUnprocessable):
		return "unprocessable"
	default:
		return "error"
	}
}

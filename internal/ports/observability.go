package ports

// Observability is the pipeline's logging and metrics backend. Key
// material and plaintext must never pass through it.
type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)
	SetGauge(name string, v float64)
}

type Field struct {
	Key   string
	Value any
}

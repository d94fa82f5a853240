package ports

import "github.com/kyberfog/kyberfog/internal/domain"

// Observer renders the pipeline state on its own cadence. Render must
// not feed anything back into the pipeline, and a slow Render only
// delays the next render, never ingestion or the crypto workflow.
type Observer interface {
	Render(c domain.Counters, run *domain.WorkflowRun)
}

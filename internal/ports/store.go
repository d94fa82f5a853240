package ports

import "github.com/kyberfog/kyberfog/internal/domain"

// RunStore persists one record per successfully verified run.
type RunStore interface {
	AppendRun(r *domain.VerifiedRun) error
	Name() string
}

package port

import (
	"github.com/google/uuid"

	"churnflow/internal/domain"
)

// BatchStore keeps completed batch runs for later review and download.
type BatchStore interface {
	Put(run *domain.BatchRun)
	Get(id uuid.UUID) (*domain.BatchRun, error)
}

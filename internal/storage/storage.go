package storage

import (
	"context"

	"github.com/clipcoach/backend/internal/models"
)

type LeadStorage interface {
	SaveLead(ctx context.Context, lead *models.Lead) error
	Close() error
}

package medplan

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists plans. Lookups of missing rows return ErrPlanNotFound.
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Plan, int, error)
	ListByResident(ctx context.Context, residentID uuid.UUID, limit, offset int) ([]*Plan, int, error)
}

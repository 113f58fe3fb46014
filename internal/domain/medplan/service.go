package medplan

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carehome/medplan/internal/platform/planvalidation"
)

// Recorder receives plan write telemetry. *metrics.ValidationMetrics
// implements it.
type Recorder interface {
	planvalidation.Recorder
	ObserveSubmission(outcome string)
}

type Service struct {
	plans     Repository
	validator *planvalidation.Validator
	recorder  Recorder
}

func NewService(plans Repository, v *planvalidation.Validator) *Service {
	return &Service{plans: plans, validator: v}
}

// SetRecorder attaches an optional Recorder.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// assess validates p and stores its score. Gated statuses with error
// diagnostics return *RejectedError and leave p unchanged.
func (s *Service) assess(ctx context.Context, operation string, p *Plan) error {
	diags, quality := s.validator.Assess(p.MedicalPlan())
	if s.recorder != nil {
		s.recorder.ObserveValidation(operation, diags)
	}

	if p.Status.gated() && planvalidation.HasErrors(diags) {
		if s.recorder != nil {
			s.recorder.ObserveSubmission("rejected")
		}
		zerolog.Ctx(ctx).Warn().
			Str("operation", operation).
			Str("resident_id", p.ResidentID.String()).
			Int("errors", planvalidation.CountBySeverity(diags)[planvalidation.SeverityError]).
			Msg("medical plan rejected")
		return &RejectedError{Diagnostics: diags}
	}

	p.Score = quality.Score
	p.Level = quality.Level
	p.Diagnostics = diags
	return nil
}

func (s *Service) accepted(ctx context.Context, operation string, p *Plan) {
	if s.recorder != nil {
		s.recorder.ObserveSubmission("accepted")
		s.recorder.ObserveQuality(p.Score, string(p.Level))
	}
	zerolog.Ctx(ctx).Info().
		Str("operation", operation).
		Str("plan_id", p.ID.String()).
		Int("score", p.Score).
		Str("level", string(p.Level)).
		Msg("medical plan saved")
}

func (s *Service) CreatePlan(ctx context.Context, p *Plan) error {
	if p.ResidentID == uuid.Nil {
		return ErrResidentRequired
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, p.Status)
	}
	if err := s.assess(ctx, "create", p); err != nil {
		return err
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return err
	}
	s.accepted(ctx, "create", p)
	return nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.plans.GetByID(ctx, id)
}

// UpdatePlan replaces the editable fields of an existing plan. ResidentID,
// CreatedBy and CreatedAt are kept from the stored row; an empty Status
// keeps the stored status.
func (s *Service) UpdatePlan(ctx context.Context, p *Plan) error {
	existing, err := s.plans.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.ResidentID = existing.ResidentID
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	if p.Status == "" {
		p.Status = existing.Status
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, p.Status)
	}
	if err := s.assess(ctx, "update", p); err != nil {
		return err
	}
	if err := s.plans.Update(ctx, p); err != nil {
		return err
	}
	s.accepted(ctx, "update", p)
	return nil
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

func (s *Service) ListPlansByResident(ctx context.Context, residentID uuid.UUID, limit, offset int) ([]*Plan, int, error) {
	return s.plans.ListByResident(ctx, residentID, limit, offset)
}

func (s *Service) ListPlans(ctx context.Context, limit, offset int) ([]*Plan, int, error) {
	return s.plans.List(ctx, limit, offset)
}

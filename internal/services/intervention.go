package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/domain"
	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/repos"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// InterventionService owns standalone intervention lifecycle operations:
// creation into wished and submission into waiting. Decision-driven moves go
// through DecisionService.
type InterventionService interface {
	CreateIntervention(ctx context.Context, tx *gorm.DB, intervention *types.Intervention) (*types.Intervention, error)
	SubmitIntervention(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID) (*types.Intervention, error)
	GetIntervention(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID) (*types.Intervention, error)
}

type interventionService struct {
	db                 *gorm.DB
	log                *logger.Logger
	interventionRepo   repos.InterventionRepo
	interventionStatus InterventionStatusService
}

func NewInterventionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	interventionRepo repos.InterventionRepo,
	interventionStatus InterventionStatusService,
) InterventionService {
	serviceLog := baseLog.With("service", "InterventionService")
	return &interventionService{
		db:                 db,
		log:                serviceLog,
		interventionRepo:   interventionRepo,
		interventionStatus: interventionStatus,
	}
}

func (is *interventionService) CreateIntervention(ctx context.Context, tx *gorm.DB, intervention *types.Intervention) (*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = is.db
	}
	if intervention.ID == uuid.Nil {
		intervention.ID = uuid.New()
	}
	intervention.Estimate.Recompute()
	if intervention.InterventionYear == 0 {
		intervention.InterventionYear = intervention.PlanificationYear
	}

	if err := is.interventionStatus.Transition(intervention, types.InterventionStatusWished, InterventionTransitionInput{}); err != nil {
		return nil, err
	}

	if _, err := is.interventionRepo.Create(ctx, transaction, []*types.Intervention{intervention}); err != nil {
		return nil, fmt.Errorf("create intervention: %w", err)
	}
	return intervention, nil
}

func (is *interventionService) SubmitIntervention(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID) (*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = is.db
	}
	intervention, err := is.interventionRepo.GetByID(ctx, transaction, interventionID)
	if err != nil {
		return nil, fmt.Errorf("load intervention: %w", err)
	}
	if intervention == nil {
		return nil, domain.NotFound("intervention.submit", "intervention", interventionID.String())
	}

	in := InterventionTransitionInput{}
	if intervention.Project != nil {
		in.ProjectTypeID = intervention.Project.TypeID
	}
	if err := is.interventionStatus.Transition(intervention, types.InterventionStatusWaiting, in); err != nil {
		return nil, err
	}

	if _, err := is.interventionRepo.Save(ctx, transaction, intervention); err != nil {
		return nil, fmt.Errorf("save intervention: %w", err)
	}
	return intervention, nil
}

func (is *interventionService) GetIntervention(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID) (*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = is.db
	}
	intervention, err := is.interventionRepo.GetByID(ctx, transaction, interventionID)
	if err != nil {
		return nil, fmt.Errorf("load intervention: %w", err)
	}
	if intervention == nil {
		return nil, domain.NotFound("intervention.get", "intervention", interventionID.String())
	}
	return intervention, nil
}

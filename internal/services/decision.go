package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/domain"
	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/notifier"
	"github.com/mtl-infra/capworks-backend/internal/repos"
	"github.com/mtl-infra/capworks-backend/internal/requestdata"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// DecisionService applies decisions to projects and interventions: it
// appends to the ledger, drives the state machine, recomputes derived
// numbers and runs the consistency cascade. Persistence order is fixed:
// project, then interventions, then program books, then annual programs.
type DecisionService interface {
	AddProjectDecision(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, decision types.Decision) (*types.Project, error)
	AddInterventionDecision(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID, decision types.Decision) (*types.Intervention, error)
}

type decisionService struct {
	db                 *gorm.DB
	log                *logger.Logger
	projectRepo        repos.ProjectRepo
	interventionRepo   repos.InterventionRepo
	programBookRepo    repos.ProgramBookRepo
	historyRepo        repos.HistoryRepo
	projectStatus      ProjectStatusService
	interventionStatus InterventionStatusService
	distribution       DistributionService
	consistency        ConsistencyService
	bus                notifier.Bus
}

func NewDecisionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	interventionRepo repos.InterventionRepo,
	programBookRepo repos.ProgramBookRepo,
	historyRepo repos.HistoryRepo,
	projectStatus ProjectStatusService,
	interventionStatus InterventionStatusService,
	distribution DistributionService,
	consistency ConsistencyService,
	bus notifier.Bus,
) DecisionService {
	serviceLog := baseLog.With("service", "DecisionService")
	return &decisionService{
		db:                 db,
		log:                serviceLog,
		projectRepo:        projectRepo,
		interventionRepo:   interventionRepo,
		programBookRepo:    programBookRepo,
		historyRepo:        historyRepo,
		projectStatus:      projectStatus,
		interventionStatus: interventionStatus,
		distribution:       distribution,
		consistency:        consistency,
		bus:                bus,
	}
}

// projectDecisionTargets maps decision types to the project status they
// drive. removeFromProgramBook is resolved separately.
var projectDecisionTargets = map[types.DecisionType]types.ProjectStatus{
	types.DecisionTypeCanceled:  types.ProjectStatusCanceled,
	types.DecisionTypePostponed: types.ProjectStatusPostponed,
	types.DecisionTypeReplanned: types.ProjectStatusReplanned,
}

// interventionDecisionTargets maps decision types to the intervention
// status they drive.
var interventionDecisionTargets = map[types.DecisionType]types.InterventionStatus{
	types.DecisionTypeAccepted:        types.InterventionStatusAccepted,
	types.DecisionTypeRefused:         types.InterventionStatusRefused,
	types.DecisionTypeReturned:        types.InterventionStatusWished,
	types.DecisionTypeRevisionRequest: types.InterventionStatusWaiting,
	types.DecisionTypeCanceled:        types.InterventionStatusCanceled,
}

func (ds *decisionService) AddProjectDecision(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, decision types.Decision) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = ds.db
	}

	project, err := ds.projectRepo.GetByID(ctx, transaction, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, domain.NotFound("project.addDecision", "project", projectID.String())
	}
	if err := ds.hydrateInterventions(ctx, transaction, project); err != nil {
		return nil, err
	}

	original := cloneProject(project)

	// All reads feeding decision logic happen before any write: the
	// remaining-book statuses are fetched now, on the pre-write snapshot.
	var remainingStatuses []types.ProgramBookStatus
	if decision.TypeID == types.DecisionTypeRemoveFromProgramBook {
		remainingStatuses, err = ds.remainingBookStatuses(ctx, transaction, project, decision)
		if err != nil {
			return nil, err
		}
	}

	ds.stampDecision(ctx, &decision)
	prevStart, prevEnd := project.StartYear, project.EndYear
	decision.PreviousStartYear = &prevStart
	decision.PreviousEndYear = &prevEnd

	target, err := ds.resolveProjectTarget(project, decision, remainingStatuses)
	if err != nil {
		return nil, err
	}

	project.Decisions = project.Decisions.Prepend(decision)

	// Removing the last book restores the prior status as an assignment: the
	// prior decision's year handlers already ran when it was applied and a
	// remove decision carries no year range to re-execute them with.
	if decision.TypeID == types.DecisionTypeRemoveFromProgramBook && len(remainingStatuses) == 0 {
		ds.detachAnnualPeriod(project, decision)
		ds.projectStatus.Restore(project, target)
	} else {
		if err := ds.projectStatus.Transition(project, target, ProjectTransitionInput{Decision: &decision}); err != nil {
			return nil, err
		}
		if decision.TypeID == types.DecisionTypeRemoveFromProgramBook {
			ds.detachAnnualPeriod(project, decision)
		}
	}

	// Fixed persistence order; a failure past this point cannot be rolled
	// back, only reported.
	if _, err := ds.projectRepo.Save(ctx, transaction, project); err != nil {
		return nil, domain.CascadeFailure("project.addDecision", "project", err)
	}
	if _, err := ds.interventionRepo.SaveAll(ctx, transaction, project.Interventions); err != nil {
		return nil, domain.CascadeFailure("project.addDecision", "intervention", err)
	}
	if err := ds.consistency.Recompute(ctx, transaction, original, project, nil); err != nil {
		return nil, err
	}

	if err := ds.writeHistory(ctx, transaction, types.HistoryObjectProject, project.ID, decision); err != nil {
		return nil, err
	}

	ds.bus.Publish(ctx, notifier.Event{
		Type:     notifier.EventDecisionApplied,
		ObjectID: project.ID.String(),
		Payload:  map[string]interface{}{"decision_type": string(decision.TypeID), "status": string(project.Status)},
	})
	return project, nil
}

func (ds *decisionService) AddInterventionDecision(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID, decision types.Decision) (*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = ds.db
	}

	intervention, err := ds.interventionRepo.GetByID(ctx, transaction, interventionID)
	if err != nil {
		return nil, fmt.Errorf("load intervention: %w", err)
	}
	if intervention == nil {
		return nil, domain.NotFound("intervention.addDecision", "intervention", interventionID.String())
	}

	target, ok := interventionDecisionTargets[decision.TypeID]
	if !ok {
		return nil, domain.ValidationError("intervention.addDecision", "typeId",
			fmt.Sprintf("decision type %q does not apply to interventions", decision.TypeID))
	}

	originalIntervention := cloneIntervention(intervention)

	ds.stampDecision(ctx, &decision)
	prevYear := intervention.PlanificationYear
	decision.PreviousPlanificationYear = &prevYear

	intervention.Decisions = intervention.Decisions.Prepend(decision)

	in := InterventionTransitionInput{Decision: &decision}
	if intervention.Project != nil {
		in.ProjectTypeID = intervention.Project.TypeID
	}
	if err := ds.interventionStatus.Transition(intervention, target, in); err != nil {
		return nil, err
	}
	intervention.Estimate.Recompute()

	// A linked project's distribution and books may now be stale.
	var project, original *types.Project
	if intervention.Project != nil {
		project, err = ds.projectRepo.GetByID(ctx, transaction, intervention.Project.ID)
		if err != nil {
			return nil, fmt.Errorf("load linked project: %w", err)
		}
		if project != nil {
			if err := ds.hydrateInterventions(ctx, transaction, project); err != nil {
				return nil, err
			}
			original = cloneProject(project)
			replaceHydrated(project, intervention)
			ds.distribution.Recompute(project)
		}
	}

	if project != nil {
		if _, err := ds.projectRepo.Save(ctx, transaction, project); err != nil {
			return nil, domain.CascadeFailure("intervention.addDecision", "project", err)
		}
		if _, err := ds.interventionRepo.SaveAll(ctx, transaction, project.Interventions); err != nil {
			return nil, domain.CascadeFailure("intervention.addDecision", "intervention", err)
		}
		if err := ds.consistency.Recompute(ctx, transaction, original, project, originalIntervention); err != nil {
			return nil, err
		}
	} else {
		if _, err := ds.interventionRepo.Save(ctx, transaction, intervention); err != nil {
			return nil, domain.CascadeFailure("intervention.addDecision", "intervention", err)
		}
	}

	if err := ds.writeHistory(ctx, transaction, types.HistoryObjectIntervention, intervention.ID, decision); err != nil {
		return nil, err
	}

	ds.bus.Publish(ctx, notifier.Event{
		Type:     notifier.EventDecisionApplied,
		ObjectID: intervention.ID.String(),
		Payload:  map[string]interface{}{"decision_type": string(decision.TypeID), "status": string(intervention.Status)},
	})
	return intervention, nil
}

// resolveProjectTarget maps the decision type to the status it drives.
// removeFromProgramBook depends on the remaining memberships: with no other
// book left the project falls back to its most recent non-programmed prior
// status; a preliminaryOrdered project follows the highest-priority status
// among its remaining books.
func (ds *decisionService) resolveProjectTarget(project *types.Project, decision types.Decision, remainingStatuses []types.ProgramBookStatus) (types.ProjectStatus, error) {
	if target, ok := projectDecisionTargets[decision.TypeID]; ok {
		return target, nil
	}
	if decision.TypeID != types.DecisionTypeRemoveFromProgramBook {
		return "", domain.ValidationError("project.addDecision", "typeId",
			fmt.Sprintf("decision type %q does not apply to projects", decision.TypeID))
	}

	if decision.AnnualPeriodYear == nil {
		return "", domain.MissingPrecondition("project.addDecision", "annualPeriodYear",
			"removeFromProgramBook requires the annual period year")
	}
	period := project.AnnualPeriodForYear(*decision.AnnualPeriodYear)
	if period == nil || period.ProgramBookID == nil {
		return "", domain.MissingPrecondition("project.addDecision", "annualPeriodYear",
			fmt.Sprintf("no program book linked on year %d", *decision.AnnualPeriodYear))
	}

	if len(remainingStatuses) == 0 {
		return priorStatusFromHistory(project), nil
	}
	if project.Status == types.ProjectStatusPreliminaryOrdered {
		return statusFromRemainingBooks(remainingStatuses), nil
	}
	return project.Status, nil
}

// remainingBookStatuses fetches the statuses of the books the project still
// belongs to once the targeted period is detached.
func (ds *decisionService) remainingBookStatuses(ctx context.Context, tx *gorm.DB, project *types.Project, decision types.Decision) ([]types.ProgramBookStatus, error) {
	if decision.AnnualPeriodYear == nil {
		return nil, nil
	}
	var removedID *uuid.UUID
	if period := project.AnnualPeriodForYear(*decision.AnnualPeriodYear); period != nil {
		removedID = period.ProgramBookID
	}

	seen := map[uuid.UUID]struct{}{}
	var remainingIDs []uuid.UUID
	for _, ap := range project.AnnualDistribution.AnnualPeriods {
		if ap.ProgramBookID == nil || ap.Year == *decision.AnnualPeriodYear {
			continue
		}
		if removedID != nil && *ap.ProgramBookID == *removedID {
			continue
		}
		if _, ok := seen[*ap.ProgramBookID]; ok {
			continue
		}
		seen[*ap.ProgramBookID] = struct{}{}
		remainingIDs = append(remainingIDs, *ap.ProgramBookID)
	}

	statuses, err := ds.programBookRepo.DistinctStatuses(ctx, tx, remainingIDs)
	if err != nil {
		return nil, fmt.Errorf("load remaining book statuses: %w", err)
	}
	return statuses, nil
}

// priorStatusFromHistory walks the ledger newest-first for the most recent
// decision-implied status, skipping the programmed family, and defaults to
// planned.
func priorStatusFromHistory(project *types.Project) types.ProjectStatus {
	for _, d := range project.Decisions {
		if target, ok := projectDecisionTargets[d.TypeID]; ok {
			return target
		}
	}
	return types.ProjectStatusPlanned
}

func statusFromRemainingBooks(statuses []types.ProgramBookStatus) types.ProjectStatus {
	hasFinal, hasPreliminary := false, false
	for _, s := range statuses {
		switch s {
		case types.ProgramBookStatusSubmittedFinal:
			hasFinal = true
		case types.ProgramBookStatusSubmittedPreliminary:
			hasPreliminary = true
		}
	}
	switch {
	case hasFinal:
		return types.ProjectStatusFinalOrdered
	case hasPreliminary:
		return types.ProjectStatusPreliminaryOrdered
	default:
		return types.ProjectStatusProgrammed
	}
}

// detachAnnualPeriod drops the specific period's book link; the rest of the
// distribution is untouched.
func (ds *decisionService) detachAnnualPeriod(project *types.Project, decision types.Decision) {
	if decision.AnnualPeriodYear == nil {
		return
	}
	for i := range project.AnnualDistribution.AnnualPeriods {
		if project.AnnualDistribution.AnnualPeriods[i].Year == *decision.AnnualPeriodYear {
			project.AnnualDistribution.AnnualPeriods[i].ProgramBookID = nil
		}
	}
}

func (ds *decisionService) stampDecision(ctx context.Context, decision *types.Decision) {
	if decision.ID == uuid.Nil {
		decision.ID = uuid.New()
	}
	decision.Audit = types.Audit{
		CreatedBy: requestdata.ActorOrSystem(ctx),
		CreatedAt: time.Now(),
	}
}

func (ds *decisionService) hydrateInterventions(ctx context.Context, tx *gorm.DB, project *types.Project) error {
	interventions, err := ds.interventionRepo.GetByIDs(ctx, tx, project.InterventionIDs)
	if err != nil {
		return fmt.Errorf("hydrate interventions: %w", err)
	}
	// Preserve the project's ordering of intervention ids.
	byID := map[uuid.UUID]*types.Intervention{}
	for _, iv := range interventions {
		if iv != nil {
			byID[iv.ID] = iv
		}
	}
	ordered := make([]*types.Intervention, 0, len(project.InterventionIDs))
	for _, id := range project.InterventionIDs {
		if iv, ok := byID[id]; ok {
			ordered = append(ordered, iv)
		}
	}
	project.Interventions = ordered
	return nil
}

func replaceHydrated(project *types.Project, intervention *types.Intervention) {
	for i, iv := range project.Interventions {
		if iv != nil && iv.ID == intervention.ID {
			project.Interventions[i] = intervention
			return
		}
	}
}

func (ds *decisionService) writeHistory(ctx context.Context, tx *gorm.DB, objectType string, referenceID uuid.UUID, decision types.Decision) error {
	record := &types.HistoryRecord{
		ID:           uuid.New(),
		ObjectTypeID: objectType,
		ReferenceID:  referenceID,
		Actor:        decision.Audit.CreatedBy,
		Action:       fmt.Sprintf("decision:%s", decision.TypeID),
		Comment:      decision.Text,
	}
	if payload, err := json.Marshal(decision); err == nil {
		record.Payload = payload
	}
	if err := ds.historyRepo.Create(ctx, tx, record); err != nil {
		return domain.Wrap(domain.CodeInternal, "history.create", err)
	}
	return nil
}

// cloneProject deep-copies a project including its hydrated interventions so
// the coordinator can diff before/after.
func cloneProject(project *types.Project) *types.Project {
	if project == nil {
		return nil
	}
	raw, err := json.Marshal(project)
	if err != nil {
		return nil
	}
	var out types.Project
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	out.Interventions = make([]*types.Intervention, 0, len(project.Interventions))
	for _, iv := range project.Interventions {
		out.Interventions = append(out.Interventions, cloneIntervention(iv))
	}
	return &out
}

func cloneIntervention(iv *types.Intervention) *types.Intervention {
	if iv == nil {
		return nil
	}
	raw, err := json.Marshal(iv)
	if err != nil {
		return nil
	}
	var out types.Intervention
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

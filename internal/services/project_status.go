package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mtl-infra/capworks-backend/internal/domain"
	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// ProjectTransitionInput carries the decision driving a transition, when one
// exists. Programming transitions run without a decision.
type ProjectTransitionInput struct {
	Decision *types.Decision
}

// ProjectStatusService validates and applies project status transitions.
// Each target owns a named handler because moving a project cascades into
// its interventions and annual distribution.
type ProjectStatusService interface {
	Transition(project *types.Project, target types.ProjectStatus, in ProjectTransitionInput) error
	Restore(project *types.Project, target types.ProjectStatus)
}

type projectStatusService struct {
	log                *logger.Logger
	distribution       DistributionService
	interventionStatus InterventionStatusService
}

func NewProjectStatusService(
	baseLog *logger.Logger,
	distribution DistributionService,
	interventionStatus InterventionStatusService,
) ProjectStatusService {
	serviceLog := baseLog.With("service", "ProjectStatusService")
	return &projectStatusService{
		log:                serviceLog,
		distribution:       distribution,
		interventionStatus: interventionStatus,
	}
}

type projectTransitionHandler func(ps *projectStatusService, project *types.Project, in ProjectTransitionInput) error

type projectTransition struct {
	from    map[types.ProjectStatus]struct{}
	handler projectTransitionHandler
}

func fromStatuses(statuses ...types.ProjectStatus) map[types.ProjectStatus]struct{} {
	set := make(map[types.ProjectStatus]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// projectTransitions maps each target status to its predecessor set and
// handler. An absent (from, to) pair is an invalid transition.
var projectTransitions = map[types.ProjectStatus]projectTransition{
	types.ProjectStatusPlanned: {
		from: fromStatuses(
			types.ProjectStatus(""),
			types.ProjectStatusProgrammed,
			types.ProjectStatusPreliminaryOrdered,
			types.ProjectStatusFinalOrdered,
		),
		handler: (*projectStatusService).handlePlanned,
	},
	types.ProjectStatusReplanned: {
		from: fromStatuses(
			types.ProjectStatusPlanned,
			types.ProjectStatusReplanned,
			types.ProjectStatusProgrammed,
			types.ProjectStatusPreliminaryOrdered,
			types.ProjectStatusFinalOrdered,
			types.ProjectStatusPostponed,
		),
		handler: (*projectStatusService).handleReplanned,
	},
	types.ProjectStatusPostponed: {
		from: fromStatuses(
			types.ProjectStatusPreliminaryOrdered,
			types.ProjectStatusFinalOrdered,
			types.ProjectStatusProgrammed,
		),
		handler: (*projectStatusService).handlePostponed,
	},
	types.ProjectStatusCanceled: {
		from: fromStatuses(
			types.ProjectStatusPlanned,
			types.ProjectStatusReplanned,
			types.ProjectStatusProgrammed,
			types.ProjectStatusPreliminaryOrdered,
			types.ProjectStatusPostponed,
			types.ProjectStatusFinalOrdered,
		),
		handler: (*projectStatusService).handleCanceled,
	},
	types.ProjectStatusProgrammed: {
		from: fromStatuses(
			types.ProjectStatusPlanned,
			types.ProjectStatusReplanned,
			types.ProjectStatusPostponed,
			types.ProjectStatusPreliminaryOrdered,
		),
		handler: (*projectStatusService).handleAssignOnly,
	},
	types.ProjectStatusPreliminaryOrdered: {
		from: fromStatuses(
			types.ProjectStatusProgrammed,
			types.ProjectStatusFinalOrdered,
		),
		handler: (*projectStatusService).handleAssignOnly,
	},
	types.ProjectStatusFinalOrdered: {
		from: fromStatuses(
			types.ProjectStatusPreliminaryOrdered,
			types.ProjectStatusProgrammed,
		),
		handler: (*projectStatusService).handleAssignOnly,
	},
}

// CanTransitionProject reports whether the pair is in the table.
func CanTransitionProject(from, to types.ProjectStatus) bool {
	if from == to {
		return true
	}
	spec, ok := projectTransitions[to]
	if !ok {
		return false
	}
	_, ok = spec.from[from]
	return ok
}

// Transition validates the pair against the table and runs the target's
// handler. A transition to the current status is a no-op success unless the
// table lists the pair explicitly (replanning an already replanned project
// reassigns years again).
func (ps *projectStatusService) Transition(project *types.Project, target types.ProjectStatus, in ProjectTransitionInput) error {
	spec, tableKnown := projectTransitions[target]
	listed := false
	if tableKnown {
		_, listed = spec.from[project.Status]
	}
	if !listed {
		if project.Status == target {
			return nil
		}
		return domain.InvalidTransition("project.transition", string(project.Status), string(target))
	}
	if err := spec.handler(ps, project, in); err != nil {
		return err
	}
	project.Status = target
	return nil
}

// Restore assigns a decision-implied prior status once the last program book
// link is removed. The target's handler does not run: the year range stays
// where the earlier decision put it, no synthetic decisions are appended and
// no intervention cascade fires. Remaining links are cleared and the
// distribution rebuilt.
func (ps *projectStatusService) Restore(project *types.Project, target types.ProjectStatus) {
	clearProgramBookLinks(project)
	ps.distribution.Recompute(project)
	project.Status = target
}

// handlePlanned returns a project to the plannable pool: every program book
// link is cleared, interventions are re-derived to the status implied by the
// project type and the distribution is rebuilt.
func (ps *projectStatusService) handlePlanned(project *types.Project, in ProjectTransitionInput) error {
	if len(project.Geometry) > 0 && len(project.InterventionIDs) == 0 {
		return domain.InvariantViolation("project.transition", "interventionIds",
			"a geolocated project requires at least one intervention")
	}
	clearProgramBookLinks(project)
	ps.rederiveInterventionStatuses(project)
	ps.distribution.Recompute(project)
	return nil
}

func (ps *projectStatusService) handleReplanned(project *types.Project, in ProjectTransitionInput) error {
	return ps.reassignYears(project, in, types.DecisionTypeReplanned)
}

func (ps *projectStatusService) handlePostponed(project *types.Project, in ProjectTransitionInput) error {
	return ps.reassignYears(project, in, types.DecisionTypePostponed)
}

// reassignYears is the shared replanned/postponed handler: it moves the
// project's year range, explains the move to every linked intervention with
// a synthetic decision, clamps planification years into the new window,
// drops program book links and rebuilds the distribution.
func (ps *projectStatusService) reassignYears(project *types.Project, in ProjectTransitionInput, syntheticType types.DecisionType) error {
	d := in.Decision
	if d == nil || d.StartYear == nil || d.EndYear == nil {
		return domain.MissingPrecondition("project.transition", "decision",
			"a decision carrying start and end years is required")
	}
	if *d.StartYear > *d.EndYear {
		return domain.InvariantViolation("project.transition", "startYear",
			fmt.Sprintf("start year %d is after end year %d", *d.StartYear, *d.EndYear))
	}
	if *d.StartYear == project.StartYear && *d.EndYear == project.EndYear {
		return domain.ValidationError("project.transition", "startYear",
			"requested year range equals the current one")
	}

	project.StartYear = *d.StartYear
	project.EndYear = *d.EndYear

	for _, iv := range project.Interventions {
		if iv == nil {
			continue
		}
		previousYear := iv.PlanificationYear
		clamped := clampYear(previousYear, project.StartYear, project.EndYear)
		synthetic := types.Decision{
			ID:                        uuid.New(),
			TypeID:                    syntheticType,
			Text:                      fmt.Sprintf("project %s moved to [%d, %d]", syntheticType, project.StartYear, project.EndYear),
			TargetYear:                &clamped,
			PreviousPlanificationYear: &previousYear,
			Audit:                     d.Audit,
		}
		if synthetic.Audit.CreatedAt.IsZero() {
			synthetic.Audit.CreatedAt = time.Now()
		}
		iv.Decisions = iv.Decisions.Prepend(synthetic)
		iv.PlanificationYear = clamped
	}

	clearProgramBookLinks(project)
	ps.distribution.Recompute(project)
	ps.rederiveInterventionStatuses(project)
	return nil
}

// handleCanceled clears program book links and cancels every cancelable
// intervention. Years are never reassigned by cancellation.
func (ps *projectStatusService) handleCanceled(project *types.Project, in ProjectTransitionInput) error {
	clearProgramBookLinks(project)
	for _, iv := range project.Interventions {
		if iv == nil {
			continue
		}
		if !CanTransitionIntervention(iv.Status, types.InterventionStatusCanceled) {
			continue
		}
		if err := ps.interventionStatus.Transition(iv, types.InterventionStatusCanceled, InterventionTransitionInput{}); err != nil {
			return err
		}
	}
	ps.distribution.Recompute(project)
	return nil
}

// handleAssignOnly covers programmed / preliminaryOrdered / finalOrdered:
// a pure status flag. Program book linkage is established by the separate
// add-to-program-book operation, never by the transition.
func (ps *projectStatusService) handleAssignOnly(project *types.Project, in ProjectTransitionInput) error {
	return nil
}

// rederiveInterventionStatuses moves every linked intervention toward the
// status implied by the project type, skipping interventions the transition
// table cannot move (terminal states stay frozen).
func (ps *projectStatusService) rederiveInterventionStatuses(project *types.Project) {
	target := types.InterventionStatusAccepted
	if project.ProjectTypeID == types.ProjectTypeIntegrated || project.ProjectTypeID == types.ProjectTypeIntegratedGP {
		target = types.InterventionStatusIntegrated
	}
	for _, iv := range project.Interventions {
		if iv == nil {
			continue
		}
		if !CanTransitionIntervention(iv.Status, target) {
			continue
		}
		in := InterventionTransitionInput{ProjectTypeID: project.ProjectTypeID}
		if err := ps.interventionStatus.Transition(iv, target, in); err != nil {
			// Guard misses leave the intervention where it stands.
			ps.log.Debug("intervention status not re-derived", "intervention_id", iv.ID, "target", target, "error", err)
		}
	}
}

func clearProgramBookLinks(project *types.Project) {
	for i := range project.AnnualDistribution.AnnualPeriods {
		project.AnnualDistribution.AnnualPeriods[i].ProgramBookID = nil
	}
}

func clampYear(year, startYear, endYear int) int {
	if year < startYear {
		return startYear
	}
	if year > endYear {
		return endYear
	}
	return year
}

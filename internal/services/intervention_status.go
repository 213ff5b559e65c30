package services

import (
	"fmt"

	"github.com/mtl-infra/capworks-backend/internal/domain"
	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// InterventionTransitionInput carries the context a guard may need: the
// decision driving the transition and the linked project's type.
type InterventionTransitionInput struct {
	Decision      *types.Decision
	ProjectTypeID string
}

// InterventionStatusService validates and applies intervention status
// transitions from an explicit transition table.
type InterventionStatusService interface {
	Transition(iv *types.Intervention, target types.InterventionStatus, in InterventionTransitionInput) error
	RecomputeDecisionRequired(iv *types.Intervention)
}

type interventionStatusService struct {
	log *logger.Logger
}

func NewInterventionStatusService(baseLog *logger.Logger) InterventionStatusService {
	serviceLog := baseLog.With("service", "InterventionStatusService")
	return &interventionStatusService{log: serviceLog}
}

type interventionGuard func(iv *types.Intervention, in InterventionTransitionInput) error

func requiresDecisionType(t types.DecisionType) interventionGuard {
	return func(iv *types.Intervention, _ InterventionTransitionInput) error {
		if !iv.Decisions.HasType(t) {
			return domain.MissingPrecondition("intervention.transition", "decisions",
				fmt.Sprintf("a decision of type %q is required", t))
		}
		return nil
	}
}

func requiresIntegratedProject(iv *types.Intervention, in InterventionTransitionInput) error {
	projectTypeID := in.ProjectTypeID
	if projectTypeID == "" && iv.Project != nil {
		projectTypeID = iv.Project.TypeID
	}
	if projectTypeID != types.ProjectTypeIntegrated && projectTypeID != types.ProjectTypeIntegratedGP {
		return domain.MissingPrecondition("intervention.transition", "project",
			"an integrated project type is required")
	}
	return nil
}

// interventionTransitions is the statically enumerable transition graph. A
// nil guard means the edge is unconditional; an absent pair is invalid.
var interventionTransitions = map[types.InterventionStatus]map[types.InterventionStatus]interventionGuard{
	types.InterventionStatusNone: {
		types.InterventionStatusWished:  nil,
		types.InterventionStatusWaiting: nil,
	},
	types.InterventionStatusWished: {
		types.InterventionStatusWaiting:  nil,
		types.InterventionStatusCanceled: nil,
	},
	types.InterventionStatusWaiting: {
		types.InterventionStatusWished:     requiresDecisionType(types.DecisionTypeReturned),
		types.InterventionStatusRefused:    requiresDecisionType(types.DecisionTypeRefused),
		types.InterventionStatusAccepted:   requiresDecisionType(types.DecisionTypeAccepted),
		types.InterventionStatusIntegrated: requiresIntegratedProject,
		types.InterventionStatusCanceled:   nil,
	},
	types.InterventionStatusRefused: {
		types.InterventionStatusWaiting:  requiresDecisionType(types.DecisionTypeRevisionRequest),
		types.InterventionStatusCanceled: nil,
	},
	types.InterventionStatusAccepted: {
		types.InterventionStatusRefused:    requiresDecisionType(types.DecisionTypeRefused),
		types.InterventionStatusIntegrated: requiresIntegratedProject,
		types.InterventionStatusCanceled:   nil,
	},
	types.InterventionStatusIntegrated: {
		types.InterventionStatusCanceled: nil,
	},
}

// CanTransitionIntervention reports whether the pair is in the table. Guards
// are not evaluated; this only enumerates the graph.
func CanTransitionIntervention(from, to types.InterventionStatus) bool {
	if from == to {
		return true
	}
	edges, ok := interventionTransitions[from]
	if !ok {
		return false
	}
	_, ok = edges[to]
	return ok
}

// Transition applies the target status. A transition to the current status
// is a no-op success. The target year moves planification/intervention years
// unless the target is refused or canceled; those never move the year.
func (is *interventionStatusService) Transition(iv *types.Intervention, target types.InterventionStatus, in InterventionTransitionInput) error {
	if iv.Status == target {
		return nil
	}
	edges, ok := interventionTransitions[iv.Status]
	if !ok {
		return domain.InvalidTransition("intervention.transition", string(iv.Status), string(target))
	}
	guard, ok := edges[target]
	if !ok {
		return domain.InvalidTransition("intervention.transition", string(iv.Status), string(target))
	}
	if guard != nil {
		if err := guard(iv, in); err != nil {
			return err
		}
	}

	iv.Status = target
	if target != types.InterventionStatusRefused && target != types.InterventionStatusCanceled {
		if in.Decision != nil && in.Decision.TargetYear != nil {
			iv.PlanificationYear = *in.Decision.TargetYear
			iv.InterventionYear = *in.Decision.TargetYear
		}
	}
	is.RecomputeDecisionRequired(iv)
	return nil
}

// RecomputeDecisionRequired re-derives the flag after every status or
// decision change: true only while the intervention waits under a program
// and the latest decision did not already settle it.
func (is *interventionStatusService) RecomputeDecisionRequired(iv *types.Intervention) {
	if iv.Status != types.InterventionStatusWaiting || iv.ProgramID == nil {
		iv.DecisionRequired = false
		return
	}
	latest := iv.Decisions.Latest()
	if latest != nil && (latest.TypeID == types.DecisionTypeRefused || latest.TypeID == types.DecisionTypeAccepted) {
		iv.DecisionRequired = false
		return
	}
	iv.DecisionRequired = true
}

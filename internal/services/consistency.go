package services

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/domain"
	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/notifier"
	"github.com/mtl-infra/capworks-backend/internal/repos"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// ConsistencyService is the single entry point for the cross-aggregate
// cascade: given the before/after view of a project (plus optionally the
// changed intervention), it detects which program books went stale, marks
// and recomputes them, and re-derives the affected annual programs.
//
// There is no cross-aggregate transaction. Writes are issued sequentially in
// a fixed order (program books, then annual programs; the caller has already
// written the project and its interventions) and a failure aborts the
// remaining cascade without rolling back what was written.
type ConsistencyService interface {
	Recompute(ctx context.Context, tx *gorm.DB, original, updated *types.Project, originalIntervention *types.Intervention) error
}

type consistencyService struct {
	log           *logger.Logger
	bookRepo      repos.ProgramBookRepo
	programBooks  ProgramBookService
	annualProgram AnnualProgramService
	bus           notifier.Bus
}

func NewConsistencyService(
	baseLog *logger.Logger,
	bookRepo repos.ProgramBookRepo,
	programBooks ProgramBookService,
	annualProgram AnnualProgramService,
	bus notifier.Bus,
) ConsistencyService {
	serviceLog := baseLog.With("service", "ConsistencyService")
	return &consistencyService{
		log:           serviceLog,
		bookRepo:      bookRepo,
		programBooks:  programBooks,
		annualProgram: annualProgram,
		bus:           bus,
	}
}

func (cs *consistencyService) Recompute(ctx context.Context, tx *gorm.DB, original, updated *types.Project, originalIntervention *types.Intervention) error {
	if original == nil || updated == nil {
		return nil
	}

	originalIDs := original.ProgramBookIDs()
	newIDs := updated.ProgramBookIDs()

	removed := diffUUIDs(originalIDs, newIDs)

	// A removal already forces a full recompute of the removed books; the
	// finer staleness detection only runs when nothing was removed.
	var outdated []uuid.UUID
	if len(removed) == 0 {
		outdated = cs.detectOutdated(original, updated, originalIntervention)
	}

	affected := unionUUIDs(removed, outdated)
	if len(affected) == 0 {
		return nil
	}

	removedSet := map[uuid.UUID]struct{}{}
	for _, id := range removed {
		removedSet[id] = struct{}{}
	}

	books, err := cs.bookRepo.GetByIDs(ctx, tx, affected)
	if err != nil {
		return domain.CascadeFailure("consistency.recompute", "programBook", err)
	}

	annualProgramIDs := map[uuid.UUID]struct{}{}
	for _, book := range books {
		if book == nil {
			continue
		}
		if _, wasRemoved := removedSet[book.ID]; wasRemoved {
			book.RemoveOrderedProject(updated.ID)
		}
		book.MarkOutdated()
		if err := cs.programBooks.RecomputeObjectives(ctx, tx, book); err != nil {
			return domain.CascadeFailure("consistency.recompute", "programBook", err)
		}
		if _, err := cs.bookRepo.Save(ctx, tx, book); err != nil {
			return domain.CascadeFailure("consistency.recompute", "programBook", err)
		}
		annualProgramIDs[book.AnnualProgramID] = struct{}{}

		_, wasRemoved := removedSet[book.ID]
		cs.bus.Publish(ctx, notifier.Event{
			Type:     notifier.EventProgramBookOutdated,
			ObjectID: book.ID.String(),
			Payload: map[string]interface{}{
				"project_id":      updated.ID.String(),
				"project_removed": wasRemoved,
			},
		})
	}

	for programID := range annualProgramIDs {
		if err := cs.annualProgram.SyncStatus(ctx, tx, programID); err != nil {
			return domain.CascadeFailure("consistency.recompute", "annualProgram", err)
		}
	}
	return nil
}

// decisionDrivenStatuses are project statuses reachable via a decision; a
// change into one of them means the years moved under every linked book.
var decisionDrivenStatuses = map[types.ProjectStatus]struct{}{
	types.ProjectStatusReplanned: {},
	types.ProjectStatusPostponed: {},
	types.ProjectStatusCanceled:  {},
}

func (cs *consistencyService) detectOutdated(original, updated *types.Project, originalIntervention *types.Intervention) []uuid.UUID {
	// Ranking inputs changed: every linked book is stale.
	if len(original.InterventionIDs) != len(updated.InterventionIDs) ||
		!reflect.DeepEqual(original.SubCategoryIDs, updated.SubCategoryIDs) ||
		!reflect.DeepEqual(original.ServicePriorities, updated.ServicePriorities) {
		return updated.ProgramBookIDs()
	}

	// A decision-driven status change moved the year range under every book
	// that was linked before the change.
	if _, ok := decisionDrivenStatuses[updated.Status]; ok && updated.Status != original.Status {
		return original.ProgramBookIDs()
	}

	var out []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	mark := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	originalByYear := interventionIDsByYear(original)
	updatedByYear := interventionIDsByYear(updated)

	for _, ap := range updated.AnnualDistribution.AnnualPeriods {
		if ap.ProgramBookID == nil {
			continue
		}
		if !equalUUIDSets(originalByYear[ap.Year], updatedByYear[ap.Year]) {
			mark(*ap.ProgramBookID)
			continue
		}
		if originalIntervention != nil && cs.interventionChangedForPeriod(updated, originalIntervention, ap) {
			mark(*ap.ProgramBookID)
		}
	}
	return out
}

// interventionChangedForPeriod compares the original intervention snapshot
// against its updated counterpart on the fields the priority ordering
// depends on.
func (cs *consistencyService) interventionChangedForPeriod(updated *types.Project, original *types.Intervention, period types.ProjectAnnualPeriod) bool {
	var current *types.Intervention
	for _, iv := range updated.Interventions {
		if iv != nil && iv.ID == original.ID {
			current = iv
			break
		}
	}
	if current == nil {
		return false
	}
	if current.RequestorID != original.RequestorID ||
		current.WorkTypeID != original.WorkTypeID ||
		current.AccountID != original.AccountID ||
		!reflect.DeepEqual(current.Assets, original.Assets) {
		return true
	}
	return annualAllowanceForYear(current, period.Year) != annualAllowanceForYear(original, period.Year)
}

func annualAllowanceForYear(iv *types.Intervention, year int) float64 {
	for _, p := range iv.AnnualDistribution.AnnualPeriods {
		if p.Year == year {
			return p.AnnualAllowance
		}
	}
	return 0
}

func interventionIDsByYear(project *types.Project) map[int]map[uuid.UUID]struct{} {
	byYear := map[int]map[uuid.UUID]struct{}{}
	for _, iv := range project.Interventions {
		if iv == nil {
			continue
		}
		set, ok := byYear[iv.PlanificationYear]
		if !ok {
			set = map[uuid.UUID]struct{}{}
			byYear[iv.PlanificationYear] = set
		}
		set[iv.ID] = struct{}{}
	}
	return byYear
}

func equalUUIDSets(a, b map[uuid.UUID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

func diffUUIDs(a, b []uuid.UUID) []uuid.UUID {
	inB := map[uuid.UUID]struct{}{}
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []uuid.UUID
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func unionUUIDs(a, b []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, id := range append(append([]uuid.UUID{}, a...), b...) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

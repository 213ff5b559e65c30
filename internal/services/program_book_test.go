package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

func TestRecomputeObjectives_SumsRankedProjects(t *testing.T) {
	f := newDecisionFixture(t)
	ctx := context.Background()
	log := logger.NewNop()
	service := NewProgramBookService(log, f.projectRepo, nil)

	bookID := uuid.New()
	keptID := uuid.New()
	removedID := uuid.New()

	if _, err := f.projectRepo.Create(ctx, nil, []*types.Project{
		{
			ID:            keptID,
			Status:        types.ProjectStatusProgrammed,
			ProjectTypeID: types.ProjectTypeIntegrated,
			StartYear:     2024,
			EndYear:       2025,
			Length:        120,
			AnnualDistribution: types.ProjectAnnualDistribution{
				AnnualPeriods: []types.ProjectAnnualPeriod{
					{Year: 2024, AnnualAllowance: 1000, ProgramBookID: &bookID},
					{Year: 2025, AnnualAllowance: 400},
				},
			},
		},
		{
			ID:            removedID,
			Status:        types.ProjectStatusProgrammed,
			ProjectTypeID: types.ProjectTypeIntegrated,
			StartYear:     2024,
			EndYear:       2024,
			Length:        999,
			AnnualDistribution: types.ProjectAnnualDistribution{
				AnnualPeriods: []types.ProjectAnnualPeriod{
					{Year: 2024, AnnualAllowance: 5000, ProgramBookID: &bookID},
				},
			},
		},
	}); err != nil {
		t.Fatalf("seed projects: %v", err)
	}

	book := &types.ProgramBook{
		ID:              bookID,
		AnnualProgramID: uuid.New(),
		Name:            "pb",
		Status:          types.ProgramBookStatusProgramming,
		PriorityScenarios: []types.PriorityScenario{
			{
				ID: uuid.New(),
				OrderedProjects: []types.OrderedProject{
					{ProjectID: keptID, Rank: 1},
					{ProjectID: removedID, Rank: 2},
				},
			},
		},
		Objectives: []types.Objective{
			{ID: uuid.New(), Name: "budget", Kind: types.ObjectiveKindBudget, TargetValue: 10000},
			{ID: uuid.New(), Name: "length", Kind: types.ObjectiveKindLength, TargetValue: 500},
		},
		RemovedProjectIDs: types.UUIDList{removedID},
	}

	if err := service.RecomputeObjectives(ctx, nil, book); err != nil {
		t.Fatalf("recompute objectives: %v", err)
	}

	// Only the kept project's periods linked to this book count.
	if got := book.Objectives[0].ComputedValue; got != 1000 {
		t.Fatalf("budget objective: want=1000 got=%v", got)
	}
	if got := book.Objectives[1].ComputedValue; got != 120 {
		t.Fatalf("length objective: want=120 got=%v", got)
	}
}

func TestRecomputeObjectives_NoObjectivesIsNoOp(t *testing.T) {
	f := newDecisionFixture(t)
	service := NewProgramBookService(logger.NewNop(), f.projectRepo, nil)

	book := &types.ProgramBook{ID: uuid.New(), AnnualProgramID: uuid.New(), Name: "pb", Status: types.ProgramBookStatusNew}
	if err := service.RecomputeObjectives(context.Background(), nil, book); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestSeedObjectives_FillsEmptyBookFromCatalogue(t *testing.T) {
	f := newDecisionFixture(t)
	defs := []ObjectiveDefinition{
		{Name: "paving budget", Kind: "budget", TargetValue: 250000},
		{Name: "sewer length", Kind: "length", TargetValue: 1200.5},
	}
	service := NewProgramBookService(logger.NewNop(), f.projectRepo, defs)

	book := &types.ProgramBook{ID: uuid.New(), AnnualProgramID: uuid.New(), Name: "pb", Status: types.ProgramBookStatusNew}
	service.SeedObjectives(book)
	if len(book.Objectives) != 2 {
		t.Fatalf("expected 2 seeded objectives, got %d", len(book.Objectives))
	}
	if book.Objectives[0].Kind != types.ObjectiveKindBudget || book.Objectives[0].TargetValue != 250000 {
		t.Fatalf("unexpected first objective: %+v", book.Objectives[0])
	}
	if book.Objectives[1].Kind != types.ObjectiveKindLength || book.Objectives[1].Name != "sewer length" {
		t.Fatalf("unexpected second objective: %+v", book.Objectives[1])
	}
	if book.Objectives[0].ID == book.Objectives[1].ID {
		t.Fatalf("seeded objectives must carry distinct ids")
	}

	// Seeding never overwrites an existing catalogue.
	before := book.Objectives[0].ID
	service.SeedObjectives(book)
	if len(book.Objectives) != 2 || book.Objectives[0].ID != before {
		t.Fatalf("seeding must be a no-op on a seeded book")
	}
}

func TestLoadObjectiveDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "objectives.yaml")
	content := []byte(`
- name: paving budget
  kind: budget
  target_value: 250000
- name: sewer length
  kind: length
  target_value: 1200.5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	defs, err := LoadObjectiveDefinitions(path, logger.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "paving budget" || defs[0].Kind != "budget" || defs[0].TargetValue != 250000 {
		t.Fatalf("unexpected first definition: %+v", defs[0])
	}
	if defs[1].TargetValue != 1200.5 {
		t.Fatalf("unexpected second definition: %+v", defs[1])
	}
}

func TestLoadObjectiveDefinitions_MissingFileIsEmpty(t *testing.T) {
	defs, err := LoadObjectiveDefinitions(filepath.Join(t.TempDir(), "absent.yaml"), logger.NewNop())
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected empty catalogue, got %+v", defs)
	}
}

func TestLoadObjectiveDefinitions_EmptyPath(t *testing.T) {
	defs, err := LoadObjectiveDefinitions("", logger.NewNop())
	if err != nil || defs != nil {
		t.Fatalf("empty path must yield nothing, got %v %v", defs, err)
	}
}

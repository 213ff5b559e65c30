package repos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// testSchema mirrors the Postgres layout without the server-side defaults
// sqlite cannot evaluate. Repos always write explicit ids and timestamps.
var testSchema = []string{
	`CREATE TABLE project (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		project_type_id TEXT NOT NULL,
		sub_category_ids TEXT,
		start_year INTEGER NOT NULL,
		end_year INTEGER NOT NULL,
		intervention_ids TEXT,
		annual_distribution TEXT,
		global_budget TEXT,
		length REAL NOT NULL DEFAULT 0,
		decisions TEXT,
		service_priorities TEXT,
		geometry TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE intervention (
		id TEXT PRIMARY KEY,
		status TEXT,
		planification_year INTEGER NOT NULL,
		intervention_year INTEGER NOT NULL,
		requestor_id TEXT,
		work_type_id TEXT,
		account_id TEXT,
		program_id TEXT,
		estimate TEXT,
		assets TEXT,
		annual_distribution TEXT,
		decisions TEXT,
		project TEXT,
		geometry TEXT,
		decision_required NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE program_book (
		id TEXT PRIMARY KEY,
		annual_program_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		project_types TEXT,
		priority_scenarios TEXT,
		objectives TEXT,
		removed_project_ids TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE annual_program (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		status TEXT NOT NULL,
		executor_id TEXT,
		budget REAL NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE history_record (
		id TEXT PRIMARY KEY,
		object_type_id TEXT NOT NULL,
		reference_id TEXT NOT NULL,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		comment TEXT,
		categories TEXT,
		payload TEXT,
		created_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func TestProjectRepo_CreateAndGetByIDRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db, logger.NewNop())
	ctx := context.Background()

	bookID := uuid.New()
	ivID := uuid.New()
	project := &types.Project{
		ID:              uuid.New(),
		Status:          types.ProjectStatusPlanned,
		ProjectTypeID:   types.ProjectTypeIntegrated,
		SubCategoryIDs:  []string{"roads"},
		StartYear:       2024,
		EndYear:         2026,
		InterventionIDs: types.UUIDList{ivID},
		AnnualDistribution: types.ProjectAnnualDistribution{
			DistributionSummary: types.DistributionSummary{TotalAllowance: 1500},
			AnnualPeriods: []types.ProjectAnnualPeriod{
				{Year: 2024, AnnualAllowance: 1500, ProgramBookID: &bookID, AccountID: "acct"},
				{Year: 2025},
				{Year: 2026},
			},
		},
		GlobalBudget: types.Budget{Allowance: 1500},
		Decisions: types.DecisionList{
			{ID: uuid.New(), TypeID: types.DecisionTypePostponed, Text: "moved"},
		},
		ServicePriorities: []types.ServicePriority{{Service: "water", PriorityID: "high"}},
	}

	if _, err := repo.Create(ctx, nil, []*types.Project{project}); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.GetByID(ctx, nil, project.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil {
		t.Fatalf("expected project, got nil")
	}
	if loaded.Status != types.ProjectStatusPlanned {
		t.Fatalf("status: want=planned got=%s", loaded.Status)
	}
	if len(loaded.InterventionIDs) != 1 || loaded.InterventionIDs[0] != ivID {
		t.Fatalf("intervention ids did not round-trip: %v", loaded.InterventionIDs)
	}
	if len(loaded.AnnualDistribution.AnnualPeriods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(loaded.AnnualDistribution.AnnualPeriods))
	}
	first := loaded.AnnualDistribution.AnnualPeriods[0]
	if first.ProgramBookID == nil || *first.ProgramBookID != bookID {
		t.Fatalf("book link did not round-trip: %+v", first)
	}
	if loaded.GlobalBudget.Allowance != 1500 {
		t.Fatalf("budget: want=1500 got=%v", loaded.GlobalBudget.Allowance)
	}
	if latest := loaded.Decisions.Latest(); latest == nil || latest.TypeID != types.DecisionTypePostponed {
		t.Fatalf("decisions did not round-trip: %+v", loaded.Decisions)
	}
}

func TestProjectRepo_GetByIDMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db, logger.NewNop())

	loaded, err := repo.GetByID(context.Background(), nil, uuid.New())
	if err != nil {
		t.Fatalf("expected nil error for missing project, got %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil project, got %+v", loaded)
	}
}

func TestProjectRepo_SaveUpdatesExistingRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepo(db, logger.NewNop())
	ctx := context.Background()

	project := &types.Project{
		ID:            uuid.New(),
		Status:        types.ProjectStatusPlanned,
		ProjectTypeID: types.ProjectTypeOther,
		StartYear:     2024,
		EndYear:       2024,
	}
	if _, err := repo.Create(ctx, nil, []*types.Project{project}); err != nil {
		t.Fatalf("create: %v", err)
	}

	project.Status = types.ProjectStatusCanceled
	if _, err := repo.Save(ctx, nil, project); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.GetByID(ctx, nil, project.ID)
	if err != nil || loaded == nil {
		t.Fatalf("get after save: %v %v", loaded, err)
	}
	if loaded.Status != types.ProjectStatusCanceled {
		t.Fatalf("status: want=canceled got=%s", loaded.Status)
	}
}

func TestInterventionRepo_RoundTripAndSaveAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewInterventionRepo(db, logger.NewNop())
	ctx := context.Background()

	projectID := uuid.New()
	interventions := []*types.Intervention{
		{
			ID:                uuid.New(),
			Status:            types.InterventionStatusWaiting,
			PlanificationYear: 2024,
			InterventionYear:  2024,
			RequestorID:       "req-1",
			Estimate:          types.Estimate{Allowance: 1000, Balance: 1000},
			Assets:            []types.Asset{{ID: "a1", TypeID: "sewer", Length: 42}},
			Project:           &types.ProjectRef{ID: projectID, TypeID: types.ProjectTypeIntegrated},
		},
		{
			ID:                uuid.New(),
			Status:            types.InterventionStatusWished,
			PlanificationYear: 2025,
			InterventionYear:  2025,
		},
	}

	if _, err := repo.Create(ctx, nil, interventions); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.GetByIDs(ctx, nil, []uuid.UUID{interventions[0].ID, interventions[1].ID})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 interventions, got %d", len(loaded))
	}

	var withProject *types.Intervention
	for _, iv := range loaded {
		if iv.ID == interventions[0].ID {
			withProject = iv
		}
	}
	if withProject == nil || withProject.Project == nil || withProject.Project.ID != projectID {
		t.Fatalf("project ref did not round-trip: %+v", withProject)
	}
	if len(withProject.Assets) != 1 || withProject.Assets[0].Length != 42 {
		t.Fatalf("assets did not round-trip: %+v", withProject.Assets)
	}

	for _, iv := range loaded {
		iv.Status = types.InterventionStatusCanceled
	}
	if _, err := repo.SaveAll(ctx, nil, loaded); err != nil {
		t.Fatalf("save all: %v", err)
	}
	reloaded, err := repo.GetByIDs(ctx, nil, []uuid.UUID{interventions[0].ID, interventions[1].ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, iv := range reloaded {
		if iv.Status != types.InterventionStatusCanceled {
			t.Fatalf("intervention %s not updated: %s", iv.ID, iv.Status)
		}
	}
}

func TestInterventionRepo_GetByIDsEmptyInput(t *testing.T) {
	db := newTestDB(t)
	repo := NewInterventionRepo(db, logger.NewNop())

	loaded, err := repo.GetByIDs(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty result, got %d", len(loaded))
	}
}

func TestProgramBookRepo_DistinctStatuses(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgramBookRepo(db, logger.NewNop())
	ctx := context.Background()

	programID := uuid.New()
	books := []*types.ProgramBook{
		{ID: uuid.New(), AnnualProgramID: programID, Name: "b1", Status: types.ProgramBookStatusSubmittedFinal},
		{ID: uuid.New(), AnnualProgramID: programID, Name: "b2", Status: types.ProgramBookStatusSubmittedFinal},
		{ID: uuid.New(), AnnualProgramID: programID, Name: "b3", Status: types.ProgramBookStatusProgramming},
	}
	if _, err := repo.Create(ctx, nil, books); err != nil {
		t.Fatalf("create: %v", err)
	}

	ids := []uuid.UUID{books[0].ID, books[1].ID, books[2].ID}
	statuses, err := repo.DistinctStatuses(ctx, nil, ids)
	if err != nil {
		t.Fatalf("distinct statuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 distinct statuses, got %v", statuses)
	}
	set := map[types.ProgramBookStatus]bool{}
	for _, s := range statuses {
		set[s] = true
	}
	if !set[types.ProgramBookStatusSubmittedFinal] || !set[types.ProgramBookStatusProgramming] {
		t.Fatalf("unexpected statuses: %v", statuses)
	}
}

func TestProgramBookRepo_GetByAnnualProgramIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgramBookRepo(db, logger.NewNop())
	ctx := context.Background()

	programA := uuid.New()
	programB := uuid.New()
	books := []*types.ProgramBook{
		{ID: uuid.New(), AnnualProgramID: programA, Name: "a1", Status: types.ProgramBookStatusNew},
		{ID: uuid.New(), AnnualProgramID: programA, Name: "a2", Status: types.ProgramBookStatusNew},
		{ID: uuid.New(), AnnualProgramID: programB, Name: "b1", Status: types.ProgramBookStatusNew},
	}
	if _, err := repo.Create(ctx, nil, books); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.GetByAnnualProgramIDs(ctx, nil, []uuid.UUID{programA})
	if err != nil {
		t.Fatalf("get by annual program: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 books for program A, got %d", len(loaded))
	}
}

func TestProgramBookRepo_SavePersistsScenariosAndRemovals(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgramBookRepo(db, logger.NewNop())
	ctx := context.Background()

	removed := uuid.New()
	book := &types.ProgramBook{
		ID:              uuid.New(),
		AnnualProgramID: uuid.New(),
		Name:            "pb",
		Status:          types.ProgramBookStatusProgramming,
		PriorityScenarios: []types.PriorityScenario{
			{ID: uuid.New(), Name: "default", OrderedProjects: []types.OrderedProject{{ProjectID: uuid.New(), Rank: 1}}},
		},
		Objectives: []types.Objective{
			{ID: uuid.New(), Name: "budget", Kind: types.ObjectiveKindBudget, TargetValue: 100000},
		},
	}
	if _, err := repo.Create(ctx, nil, []*types.ProgramBook{book}); err != nil {
		t.Fatalf("create: %v", err)
	}

	book.MarkOutdated()
	book.RemovedProjectIDs = append(book.RemovedProjectIDs, removed)
	if _, err := repo.Save(ctx, nil, book); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.GetByIDs(ctx, nil, []uuid.UUID{book.ID})
	if err != nil || len(loaded) != 1 {
		t.Fatalf("reload: %v %v", loaded, err)
	}
	if !loaded[0].IsOutdated() {
		t.Fatalf("outdated flag did not round-trip")
	}
	if !loaded[0].RemovedProjectIDs.Contains(removed) {
		t.Fatalf("removed project ids did not round-trip")
	}
	if len(loaded[0].Objectives) != 1 || loaded[0].Objectives[0].Kind != types.ObjectiveKindBudget {
		t.Fatalf("objectives did not round-trip: %+v", loaded[0].Objectives)
	}
}

func TestAnnualProgramRepo_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnnualProgramRepo(db, logger.NewNop())
	ctx := context.Background()

	program := &types.AnnualProgram{
		ID:         uuid.New(),
		Year:       2025,
		Status:     types.AnnualProgramStatusNew,
		ExecutorID: "exec-1",
		Budget:     5000000,
	}
	if _, err := repo.Create(ctx, nil, []*types.AnnualProgram{program}); err != nil {
		t.Fatalf("create: %v", err)
	}

	program.Status = types.AnnualProgramStatusProgramming
	if _, err := repo.Save(ctx, nil, program); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.GetByIDs(ctx, nil, []uuid.UUID{program.ID})
	if err != nil || len(loaded) != 1 {
		t.Fatalf("reload: %v %v", loaded, err)
	}
	if loaded[0].Status != types.AnnualProgramStatusProgramming {
		t.Fatalf("status: want=programming got=%s", loaded[0].Status)
	}
}

func TestHistoryRepo_CreateWritesRecord(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoryRepo(db, logger.NewNop())
	ctx := context.Background()

	record := &types.HistoryRecord{
		ID:           uuid.New(),
		ObjectTypeID: types.HistoryObjectProject,
		ReferenceID:  uuid.New(),
		Actor:        "planner",
		Action:       "decision:postponed",
		Comment:      "moved a year out",
	}
	if err := repo.Create(ctx, nil, record); err != nil {
		t.Fatalf("create: %v", err)
	}

	var count int64
	if err := db.Model(&types.HistoryRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	if err := repo.Create(ctx, nil, nil); err != nil {
		t.Fatalf("nil record must be a no-op: %v", err)
	}
}

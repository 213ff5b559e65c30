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

// ProjectService owns project creation and program book membership. Status
// transitions triggered here run through the same state machine as decision
// driven ones.
type ProjectService interface {
	CreateProject(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error)
	GetProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Project, error)
	AddToProgramBook(ctx context.Context, tx *gorm.DB, projectID, programBookID uuid.UUID, year int) (*types.Project, error)
}

type projectService struct {
	db               *gorm.DB
	log              *logger.Logger
	projectRepo      repos.ProjectRepo
	interventionRepo repos.InterventionRepo
	programBookRepo  repos.ProgramBookRepo
	projectStatus    ProjectStatusService
	distribution     DistributionService
	programBooks     ProgramBookService
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	interventionRepo repos.InterventionRepo,
	programBookRepo repos.ProgramBookRepo,
	projectStatus ProjectStatusService,
	distribution DistributionService,
	programBooks ProgramBookService,
) ProjectService {
	serviceLog := baseLog.With("service", "ProjectService")
	return &projectService{
		db:               db,
		log:              serviceLog,
		projectRepo:      projectRepo,
		interventionRepo: interventionRepo,
		programBookRepo:  programBookRepo,
		projectStatus:    projectStatus,
		distribution:     distribution,
		programBooks:     programBooks,
	}
}

// CreateProject validates the shape, hydrates the linked interventions,
// runs the creation transition into planned and persists everything.
func (ps *projectService) CreateProject(ctx context.Context, tx *gorm.DB, project *types.Project) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	if err := ValidateProjectShape(project); err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	interventions, err := ps.interventionRepo.GetByIDs(ctx, transaction, project.InterventionIDs)
	if err != nil {
		return nil, fmt.Errorf("load interventions: %w", err)
	}
	if len(interventions) != len(project.InterventionIDs) {
		return nil, domain.NotFound("project.create", "intervention", "one or more linked interventions")
	}
	project.Interventions = interventions

	for _, iv := range interventions {
		iv.Project = &types.ProjectRef{ID: project.ID, TypeID: project.ProjectTypeID}
	}

	if err := ps.projectStatus.Transition(project, types.ProjectStatusPlanned, ProjectTransitionInput{}); err != nil {
		return nil, err
	}

	if _, err := ps.projectRepo.Create(ctx, transaction, []*types.Project{project}); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if _, err := ps.interventionRepo.SaveAll(ctx, transaction, interventions); err != nil {
		return nil, domain.CascadeFailure("project.create", "intervention", err)
	}
	return project, nil
}

func (ps *projectService) GetProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}
	project, err := ps.projectRepo.GetByID(ctx, transaction, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, domain.NotFound("project.get", "project", projectID.String())
	}
	interventions, err := ps.interventionRepo.GetByIDs(ctx, transaction, project.InterventionIDs)
	if err != nil {
		return nil, fmt.Errorf("hydrate interventions: %w", err)
	}
	project.Interventions = interventions
	return project, nil
}

// AddToProgramBook links the annual period for the given year to the book.
// Links must stay a prefix of consecutive periods: a year may only be linked
// when it is the first period or its predecessor is already linked.
func (ps *projectService) AddToProgramBook(ctx context.Context, tx *gorm.DB, projectID, programBookID uuid.UUID, year int) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	project, err := ps.projectRepo.GetByID(ctx, transaction, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, domain.NotFound("project.addToProgramBook", "project", projectID.String())
	}

	books, err := ps.programBookRepo.GetByIDs(ctx, transaction, []uuid.UUID{programBookID})
	if err != nil {
		return nil, fmt.Errorf("load program book: %w", err)
	}
	if len(books) == 0 || books[0] == nil {
		return nil, domain.NotFound("project.addToProgramBook", "programBook", programBookID.String())
	}
	book := books[0]

	periods := project.AnnualDistribution.AnnualPeriods
	idx := -1
	for i := range periods {
		if periods[i].Year == year {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ValidationError("project.addToProgramBook", "year",
			fmt.Sprintf("year %d is outside the project range [%d, %d]", year, project.StartYear, project.EndYear))
	}
	if idx > 0 && periods[idx-1].ProgramBookID == nil {
		return nil, domain.InvariantViolation("project.addToProgramBook", "annualPeriods",
			fmt.Sprintf("year %d cannot be linked before year %d", year, periods[idx-1].Year))
	}
	periods[idx].ProgramBookID = &book.ID

	if err := ps.projectStatus.Transition(project, types.ProjectStatusProgrammed, ProjectTransitionInput{}); err != nil {
		return nil, err
	}

	if _, err := ps.projectRepo.Save(ctx, transaction, project); err != nil {
		return nil, domain.CascadeFailure("project.addToProgramBook", "project", err)
	}

	ps.programBooks.SeedObjectives(book)
	book.MarkOutdated()
	if err := ps.programBooks.RecomputeObjectives(ctx, transaction, book); err != nil {
		return nil, domain.CascadeFailure("project.addToProgramBook", "programBook", err)
	}
	if _, err := ps.programBookRepo.Save(ctx, transaction, book); err != nil {
		return nil, domain.CascadeFailure("project.addToProgramBook", "programBook", err)
	}
	return project, nil
}

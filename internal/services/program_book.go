package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/repos"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// ProgramBookService recomputes program book objectives. Recomputation is
// always triggered by the consistency pass, never automatic.
type ProgramBookService interface {
	RecomputeObjectives(ctx context.Context, tx *gorm.DB, book *types.ProgramBook) error
	SeedObjectives(book *types.ProgramBook)
}

type programBookService struct {
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	definitions []ObjectiveDefinition
}

func NewProgramBookService(baseLog *logger.Logger, projectRepo repos.ProjectRepo, definitions []ObjectiveDefinition) ProgramBookService {
	serviceLog := baseLog.With("service", "ProgramBookService")
	return &programBookService{log: serviceLog, projectRepo: projectRepo, definitions: definitions}
}

// SeedObjectives fills an empty book with the configured objective catalogue.
// Books that already carry objectives are left alone.
func (bs *programBookService) SeedObjectives(book *types.ProgramBook) {
	if book == nil || len(book.Objectives) > 0 || len(bs.definitions) == 0 {
		return
	}
	for _, def := range bs.definitions {
		kind := types.ObjectiveKindBudget
		if def.Kind == string(types.ObjectiveKindLength) {
			kind = types.ObjectiveKindLength
		}
		book.Objectives = append(book.Objectives, types.Objective{
			ID:          uuid.New(),
			Name:        def.Name,
			Kind:        kind,
			TargetValue: def.TargetValue,
		})
	}
}

// RecomputeObjectives re-derives every objective's computed value from the
// projects still ranked in the book's scenarios. Removed projects no longer
// contribute.
func (bs *programBookService) RecomputeObjectives(ctx context.Context, tx *gorm.DB, book *types.ProgramBook) error {
	if len(book.Objectives) == 0 {
		return nil
	}

	seen := map[uuid.UUID]struct{}{}
	var keptIDs []uuid.UUID
	for _, scenario := range book.PriorityScenarios {
		for _, op := range scenario.OrderedProjects {
			if _, ok := seen[op.ProjectID]; ok {
				continue
			}
			if book.RemovedProjectIDs.Contains(op.ProjectID) {
				continue
			}
			seen[op.ProjectID] = struct{}{}
			keptIDs = append(keptIDs, op.ProjectID)
		}
	}

	projects, err := bs.projectRepo.GetByIDs(ctx, tx, keptIDs)
	if err != nil {
		return fmt.Errorf("load ranked projects: %w", err)
	}

	var budget, length float64
	for _, project := range projects {
		if project == nil {
			continue
		}
		for _, ap := range project.AnnualDistribution.AnnualPeriods {
			if ap.ProgramBookID != nil && *ap.ProgramBookID == book.ID {
				budget += ap.AnnualAllowance
			}
		}
		length += project.Length
	}

	for i := range book.Objectives {
		switch book.Objectives[i].Kind {
		case types.ObjectiveKindLength:
			book.Objectives[i].ComputedValue = length
		default:
			book.Objectives[i].ComputedValue = truncateThousandths(budget)
		}
	}
	return nil
}

// ObjectiveDefinition seeds a program book's objectives from configuration.
type ObjectiveDefinition struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"`
	TargetValue float64 `yaml:"target_value"`
}

// LoadObjectiveDefinitions reads the objective catalogue used when creating
// program books. A missing file yields an empty catalogue.
func LoadObjectiveDefinitions(path string, log *logger.Logger) ([]ObjectiveDefinition, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if log != nil {
				log.Debug("Objective definitions file not found, using empty catalogue", "path", path)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("read objective definitions: %w", err)
	}
	var defs []ObjectiveDefinition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse objective definitions: %w", err)
	}
	return defs, nil
}

package services

import (
	"math"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// BudgetService computes a project's global budget and length from its
// hydrated interventions. Pure computation; callers persist.
type BudgetService interface {
	ComputeGlobalBudget(project *types.Project) types.Budget
	ComputeLength(project *types.Project) float64
}

type budgetService struct {
	log *logger.Logger
}

func NewBudgetService(baseLog *logger.Logger) BudgetService {
	serviceLog := baseLog.With("service", "BudgetService")
	return &budgetService{log: serviceLog}
}

// ComputeGlobalBudget dispatches on the project's distribution kind. A
// non-geolocated budget is an explicit input and is never silently zeroed;
// a geolocated project with no hydrated interventions keeps its previous
// budget for the same reason.
func (bs *budgetService) ComputeGlobalBudget(project *types.Project) types.Budget {
	if project.DistributionKind() == types.DistributionKindNonGeolocated {
		return project.GlobalBudget
	}
	if len(project.Interventions) == 0 {
		return project.GlobalBudget
	}
	var total float64
	for _, iv := range project.Interventions {
		if iv == nil {
			continue
		}
		total += iv.Estimate.Allowance
	}
	return types.Budget{Allowance: truncateThousandths(total)}
}

// ComputeLength sums the asset lengths of every hydrated intervention.
func (bs *budgetService) ComputeLength(project *types.Project) float64 {
	if len(project.Interventions) == 0 {
		return project.Length
	}
	var total float64
	for _, iv := range project.Interventions {
		if iv == nil {
			continue
		}
		total += iv.AssetLength()
	}
	return total
}

// truncateThousandths truncates toward zero at 3 decimal places. Repeated
// recomputation over an unchanged intervention set must not drift.
func truncateThousandths(v float64) float64 {
	return math.Trunc(v*1000) / 1000
}

package services

import (
	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// DistributionService rebuilds a project's annual distribution over
// [startYear, endYear] plus the per-intervention distributions. It must be
// re-invoked after project creation, year range changes, intervention
// add/remove, and any intervention allowance change; it never triggers
// itself.
type DistributionService interface {
	Recompute(project *types.Project)
}

type distributionService struct {
	log    *logger.Logger
	budget BudgetService
}

func NewDistributionService(baseLog *logger.Logger, budget BudgetService) DistributionService {
	serviceLog := baseLog.With("service", "DistributionService")
	return &distributionService{log: serviceLog, budget: budget}
}

// Recompute rebuilds periods for the current year range: years entering the
// range gain a period, years leaving it are dropped, and surviving periods
// keep their program book link and account. The strategy is resolved once
// from the project's distribution kind.
func (ds *distributionService) Recompute(project *types.Project) {
	switch project.DistributionKind() {
	case types.DistributionKindNonGeolocated:
		ds.recomputeNonGeolocated(project)
	default:
		ds.recomputeGeolocated(project)
	}

	var total float64
	for _, ap := range project.AnnualDistribution.AnnualPeriods {
		total += ap.AnnualAllowance
	}
	project.AnnualDistribution.DistributionSummary.TotalAllowance = truncateThousandths(total)
	project.GlobalBudget = ds.budget.ComputeGlobalBudget(project)
	project.Length = ds.budget.ComputeLength(project)
}

// recomputeGeolocated places each intervention's full allowance on the
// period matching its rank, the 0-based offset of its planification year
// from the project start year, and sums intervention periods into project
// periods.
func (ds *distributionService) recomputeGeolocated(project *types.Project) {
	years := yearRange(project.StartYear, project.EndYear)

	for _, iv := range project.Interventions {
		if iv == nil {
			continue
		}
		rank := iv.PlanificationYear - project.StartYear
		if rank < 0 {
			rank = 0
		}
		if rank > len(years)-1 {
			rank = len(years) - 1
		}
		periods := make([]types.InterventionAnnualPeriod, 0, len(years))
		for i, year := range years {
			period := types.InterventionAnnualPeriod{
				Year:      year,
				Rank:      i,
				AccountID: iv.AccountID,
			}
			if i == rank {
				period.AnnualAllowance = iv.Estimate.Allowance
			}
			periods = append(periods, period)
		}
		iv.AnnualDistribution.AnnualPeriods = periods
	}

	previous := map[int]types.ProjectAnnualPeriod{}
	for _, ap := range project.AnnualDistribution.AnnualPeriods {
		previous[ap.Year] = ap
	}

	periods := make([]types.ProjectAnnualPeriod, 0, len(years))
	for _, year := range years {
		period := types.ProjectAnnualPeriod{Year: year}
		if prev, ok := previous[year]; ok {
			period.ProgramBookID = prev.ProgramBookID
			period.AccountID = prev.AccountID
		}
		var allowance float64
		for _, iv := range project.Interventions {
			if iv == nil {
				continue
			}
			for _, ivp := range iv.AnnualDistribution.AnnualPeriods {
				if ivp.Year == year {
					allowance += ivp.AnnualAllowance
				}
			}
		}
		period.AnnualAllowance = truncateThousandths(allowance)
		periods = append(periods, period)
	}
	project.AnnualDistribution.AnnualPeriods = periods
}

// recomputeNonGeolocated adjusts the year range only: the per-period
// allowances are explicit input and survive as long as their year does.
func (ds *distributionService) recomputeNonGeolocated(project *types.Project) {
	years := yearRange(project.StartYear, project.EndYear)

	previous := map[int]types.ProjectAnnualPeriod{}
	for _, ap := range project.AnnualDistribution.AnnualPeriods {
		previous[ap.Year] = ap
	}

	periods := make([]types.ProjectAnnualPeriod, 0, len(years))
	for _, year := range years {
		if prev, ok := previous[year]; ok {
			periods = append(periods, prev)
			continue
		}
		periods = append(periods, types.ProjectAnnualPeriod{Year: year})
	}
	project.AnnualDistribution.AnnualPeriods = periods
}

func yearRange(startYear, endYear int) []int {
	if endYear < startYear {
		endYear = startYear
	}
	years := make([]int, 0, endYear-startYear+1)
	for y := startYear; y <= endYear; y++ {
		years = append(years, y)
	}
	return years
}

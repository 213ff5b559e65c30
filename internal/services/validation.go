package services

import (
	"fmt"

	"github.com/mtl-infra/capworks-backend/internal/domain"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// ValidateProjectShape rejects malformed projects at the creation/import
// boundary. These are input contracts, not standing invariants: mutation
// paths rely on them having been enforced here.
func ValidateProjectShape(project *types.Project) error {
	if project.StartYear > project.EndYear {
		return domain.InvariantViolation("project.validate", "startYear",
			fmt.Sprintf("start year %d is after end year %d", project.StartYear, project.EndYear))
	}

	if len(project.Geometry) > 0 && len(project.InterventionIDs) == 0 {
		return domain.InvariantViolation("project.validate", "interventionIds",
			"a geolocated project requires at least one intervention")
	}

	if project.DistributionKind() == types.DistributionKindNonGeolocated && len(project.InterventionIDs) > 0 {
		return domain.ValidationError("project.validate", "interventionIds",
			"a non-geolocated project cannot carry interventions")
	}

	// Program book links may only cover a prefix of consecutive periods.
	gapSeen := false
	for _, ap := range project.AnnualDistribution.AnnualPeriods {
		if ap.ProgramBookID == nil {
			gapSeen = true
			continue
		}
		if gapSeen {
			return domain.InvariantViolation("project.validate", "annualPeriods",
				fmt.Sprintf("program book link on year %d follows an unlinked period", ap.Year))
		}
	}

	seen := map[string]struct{}{}
	for _, id := range project.InterventionIDs {
		if _, ok := seen[id.String()]; ok {
			return domain.ValidationError("project.validate", "interventionIds",
				fmt.Sprintf("duplicate intervention id %s", id))
		}
		seen[id.String()] = struct{}{}
	}
	return nil
}

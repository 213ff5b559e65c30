package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mtl-infra/capworks-backend/internal/domain"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

func TestValidateProjectShape_AcceptsWellFormedProject(t *testing.T) {
	bookID := uuid.New()
	project := &types.Project{
		ProjectTypeID:   types.ProjectTypeIntegrated,
		Geometry:        testGeometry(),
		StartYear:       2024,
		EndYear:         2026,
		InterventionIDs: types.UUIDList{uuid.New(), uuid.New()},
		AnnualDistribution: types.ProjectAnnualDistribution{
			AnnualPeriods: []types.ProjectAnnualPeriod{
				{Year: 2024, ProgramBookID: &bookID},
				{Year: 2025, ProgramBookID: &bookID},
				{Year: 2026},
			},
		},
	}
	if err := ValidateProjectShape(project); err != nil {
		t.Fatalf("expected valid project, got %v", err)
	}
}

func TestValidateProjectShape_RejectsInvertedYearRange(t *testing.T) {
	project := &types.Project{
		ProjectTypeID: types.ProjectTypeOther,
		StartYear:     2026,
		EndYear:       2024,
	}
	err := ValidateProjectShape(project)
	if !domain.IsCode(err, domain.CodeInvariantViolation) {
		t.Fatalf("expected invariant_violation, got %v", err)
	}
}

func TestValidateProjectShape_RejectsGeolocatedWithoutInterventions(t *testing.T) {
	project := &types.Project{
		ProjectTypeID: types.ProjectTypeIntegrated,
		Geometry:      testGeometry(),
		StartYear:     2024,
		EndYear:       2025,
	}
	err := ValidateProjectShape(project)
	if !domain.IsCode(err, domain.CodeInvariantViolation) {
		t.Fatalf("expected invariant_violation, got %v", err)
	}
}

func TestValidateProjectShape_RejectsNonGeolocatedWithInterventions(t *testing.T) {
	project := &types.Project{
		ProjectTypeID:   types.ProjectTypeOther,
		StartYear:       2024,
		EndYear:         2025,
		InterventionIDs: types.UUIDList{uuid.New()},
	}
	err := ValidateProjectShape(project)
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateProjectShape_RejectsBookLinkAfterGap(t *testing.T) {
	bookID := uuid.New()
	project := &types.Project{
		ProjectTypeID:   types.ProjectTypeIntegrated,
		Geometry:        testGeometry(),
		StartYear:       2024,
		EndYear:         2026,
		InterventionIDs: types.UUIDList{uuid.New()},
		AnnualDistribution: types.ProjectAnnualDistribution{
			AnnualPeriods: []types.ProjectAnnualPeriod{
				{Year: 2024, ProgramBookID: &bookID},
				{Year: 2025},
				{Year: 2026, ProgramBookID: &bookID},
			},
		},
	}
	err := ValidateProjectShape(project)
	if !domain.IsCode(err, domain.CodeInvariantViolation) {
		t.Fatalf("expected invariant_violation for non-prefix link, got %v", err)
	}
	if got := domain.TargetOf(err); got != "annualPeriods" {
		t.Fatalf("target: want=annualPeriods got=%s", got)
	}
}

func TestValidateProjectShape_RejectsDuplicateInterventionIDs(t *testing.T) {
	dup := uuid.New()
	project := &types.Project{
		ProjectTypeID:   types.ProjectTypeIntegrated,
		Geometry:        testGeometry(),
		StartYear:       2024,
		EndYear:         2025,
		InterventionIDs: types.UUIDList{dup, dup},
	}
	err := ValidateProjectShape(project)
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected validation error for duplicates, got %v", err)
	}
}

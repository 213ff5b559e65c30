package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProjectAnnualPeriod is one per-calendar-year slice of a project's budget.
// ProgramBookID is a weak reference; the book is never owned. Links may only
// cover a prefix of consecutive periods.
type ProjectAnnualPeriod struct {
	Year            int        `json:"year"`
	AnnualAllowance float64    `json:"annual_allowance"`
	ProgramBookID   *uuid.UUID `json:"program_book_id,omitempty"`
	AccountID       string     `json:"account_id,omitempty"`
}

// ProjectAnnualDistribution is exclusively owned by its project.
type ProjectAnnualDistribution struct {
	DistributionSummary DistributionSummary   `json:"distribution_summary"`
	AnnualPeriods       []ProjectAnnualPeriod `json:"annual_periods"`
}

// DistributionSummary aggregates the per-period numbers.
type DistributionSummary struct {
	TotalAllowance float64 `json:"total_allowance"`
}

// Budget is the project-level derived budget.
type Budget struct {
	Allowance float64 `json:"allowance"`
}

// ServicePriority influences program book ordering; changing one outdates
// every linked program book.
type ServicePriority struct {
	Service    string `json:"service"`
	PriorityID string `json:"priority_id"`
}

// UUIDList is stored as a JSON column; order is meaningful and entries are
// unique.
type UUIDList []uuid.UUID

// Contains reports membership.
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Project groups interventions sharing execution.
type Project struct {
	ID     uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status ProjectStatus `gorm:"column:status;not null;index" json:"status"`

	ProjectTypeID string `gorm:"column:project_type_id;not null;index" json:"project_type_id"`
	SubCategoryIDs []string `gorm:"column:sub_category_ids;serializer:json" json:"sub_category_ids"`

	StartYear int `gorm:"column:start_year;not null" json:"start_year"`
	EndYear   int `gorm:"column:end_year;not null" json:"end_year"`

	InterventionIDs UUIDList `gorm:"column:intervention_ids;serializer:json" json:"intervention_ids"`

	// Interventions is the transient hydrated view; it is never persisted.
	Interventions []*Intervention `gorm:"-" json:"interventions,omitempty"`

	AnnualDistribution ProjectAnnualDistribution `gorm:"column:annual_distribution;serializer:json" json:"annual_distribution"`
	GlobalBudget       Budget                    `gorm:"column:global_budget;serializer:json" json:"global_budget"`
	Length             float64                   `gorm:"column:length;not null;default:0" json:"length"`

	Decisions         DecisionList      `gorm:"column:decisions;serializer:json" json:"decisions"`
	ServicePriorities []ServicePriority `gorm:"column:service_priorities;serializer:json" json:"service_priorities"`

	// Geometry absent means the project is a candidate for the
	// non-geolocated distribution kind.
	Geometry datatypes.JSON `gorm:"column:geometry;type:jsonb" json:"geometry,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Project) TableName() string { return "project" }

// IsGeolocated resolves the distribution kind predicate: a project is
// non-geolocated iff its type is "other" and it has no geometry.
func (p *Project) IsGeolocated() bool {
	return !(p.ProjectTypeID == ProjectTypeOther && len(p.Geometry) == 0)
}

// DistributionKind resolves the strategy once; callers pass it explicitly.
func (p *Project) DistributionKind() DistributionKind {
	if p.IsGeolocated() {
		return DistributionKindGeolocated
	}
	return DistributionKindNonGeolocated
}

// ProgramBookIDs returns the distinct program book ids across all annual
// periods, in period order.
func (p *Project) ProgramBookIDs() []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, ap := range p.AnnualDistribution.AnnualPeriods {
		if ap.ProgramBookID == nil {
			continue
		}
		if _, ok := seen[*ap.ProgramBookID]; ok {
			continue
		}
		seen[*ap.ProgramBookID] = struct{}{}
		out = append(out, *ap.ProgramBookID)
	}
	return out
}

// AnnualPeriodForYear returns the period matching year, or nil.
func (p *Project) AnnualPeriodForYear(year int) *ProjectAnnualPeriod {
	for i := range p.AnnualDistribution.AnnualPeriods {
		if p.AnnualDistribution.AnnualPeriods[i].Year == year {
			return &p.AnnualDistribution.AnnualPeriods[i]
		}
	}
	return nil
}

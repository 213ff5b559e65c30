package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Estimate carries the intervention budget split. Balance is derived:
// balance = allowance - burnedDown.
type Estimate struct {
	Allowance  float64 `json:"allowance"`
	BurnedDown float64 `json:"burned_down"`
	Balance    float64 `json:"balance"`
}

// Recompute re-derives the balance from allowance and burn-down.
func (e *Estimate) Recompute() {
	e.Balance = e.Allowance - e.BurnedDown
}

// Asset is a physical element an intervention works on.
type Asset struct {
	ID        string  `json:"id"`
	TypeID    string  `json:"type_id"`
	OwnerID   string  `json:"owner_id,omitempty"`
	Length    float64 `json:"length"`
	AccountID string  `json:"account_id,omitempty"`
}

// InterventionAnnualPeriod is one per-calendar-year slice of an
// intervention's budget once the intervention is linked to a geolocated
// project. Rank is the 0-based offset from the project's start year.
type InterventionAnnualPeriod struct {
	Year            int     `json:"year"`
	Rank            int     `json:"rank"`
	AnnualAllowance float64 `json:"annual_allowance"`
	AccountID       string  `json:"account_id,omitempty"`
}

// InterventionAnnualDistribution owns the intervention's annual periods.
type InterventionAnnualDistribution struct {
	AnnualPeriods []InterventionAnnualPeriod `json:"annual_periods"`
}

// ProjectRef is the weak back-reference from an intervention to its owning
// project. The project remains the authoritative owner of the association.
type ProjectRef struct {
	ID     uuid.UUID `json:"id"`
	TypeID string    `json:"type_id"`
}

// Intervention is a single physical work item.
type Intervention struct {
	ID     uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status InterventionStatus `gorm:"column:status;index" json:"status"`

	PlanificationYear int `gorm:"column:planification_year;not null" json:"planification_year"`
	InterventionYear  int `gorm:"column:intervention_year;not null" json:"intervention_year"`

	RequestorID string `gorm:"column:requestor_id" json:"requestor_id"`
	WorkTypeID  string `gorm:"column:work_type_id" json:"work_type_id"`
	AccountID   string `gorm:"column:account_id" json:"account_id"`

	ProgramID *string `gorm:"column:program_id;index" json:"program_id,omitempty"`

	Estimate           Estimate                       `gorm:"column:estimate;serializer:json" json:"estimate"`
	Assets             []Asset                        `gorm:"column:assets;serializer:json" json:"assets"`
	AnnualDistribution InterventionAnnualDistribution `gorm:"column:annual_distribution;serializer:json" json:"annual_distribution"`
	Decisions          DecisionList                   `gorm:"column:decisions;serializer:json" json:"decisions"`
	Project            *ProjectRef                    `gorm:"column:project;serializer:json" json:"project,omitempty"`
	Geometry           datatypes.JSON                 `gorm:"column:geometry;type:jsonb" json:"geometry,omitempty"`

	DecisionRequired bool `gorm:"column:decision_required;not null;default:false" json:"decision_required"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Intervention) TableName() string { return "intervention" }

// AssetLength sums the lengths of all worked assets.
func (iv *Intervention) AssetLength() float64 {
	var total float64
	for _, a := range iv.Assets {
		total += a.Length
	}
	return total
}

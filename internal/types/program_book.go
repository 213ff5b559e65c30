package types

import (
	"time"

	"github.com/google/uuid"
)

// PriorityLevel is one tier of a priority scenario's ranking configuration.
type PriorityLevel struct {
	Rank     int      `json:"rank"`
	Criteria []string `json:"criteria,omitempty"`
}

// OrderedProject is a ranked candidate project within a priority scenario.
type OrderedProject struct {
	ProjectID uuid.UUID `json:"project_id"`
	Rank      int       `json:"rank"`
}

// PriorityScenario ranks candidate projects. It becomes outdated whenever
// underlying project or intervention data changes; recomputation is
// triggered, never automatic.
type PriorityScenario struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	PriorityLevels  []PriorityLevel  `json:"priority_levels,omitempty"`
	OrderedProjects []OrderedProject `json:"ordered_projects,omitempty"`
	Outdated        bool             `json:"outdated"`
}

// ObjectiveKind selects what an objective measures.
type ObjectiveKind string

const (
	ObjectiveKindBudget ObjectiveKind = "budget"
	ObjectiveKindLength ObjectiveKind = "length"
)

// Objective is a program book target with its computed actual value.
type Objective struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Kind          ObjectiveKind `json:"kind"`
	TargetValue   float64       `json:"target_value"`
	ComputedValue float64       `json:"computed_value"`
}

// ProgramBook is an annual planning batch ranking candidate projects.
type ProgramBook struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AnnualProgramID uuid.UUID         `gorm:"type:uuid;not null;index" json:"annual_program_id"`
	Name            string            `gorm:"column:name;not null" json:"name"`
	Status          ProgramBookStatus `gorm:"column:status;not null;index" json:"status"`

	ProjectTypes      []string           `gorm:"column:project_types;serializer:json" json:"project_types"`
	PriorityScenarios []PriorityScenario `gorm:"column:priority_scenarios;serializer:json" json:"priority_scenarios"`
	Objectives        []Objective        `gorm:"column:objectives;serializer:json" json:"objectives"`

	// RemovedProjectIDs records projects removed by decision so the ranking
	// recompute can account for them.
	RemovedProjectIDs UUIDList `gorm:"column:removed_project_ids;serializer:json" json:"removed_project_ids"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProgramBook) TableName() string { return "program_book" }

// MarkOutdated flags every priority scenario stale.
func (b *ProgramBook) MarkOutdated() {
	for i := range b.PriorityScenarios {
		b.PriorityScenarios[i].Outdated = true
	}
}

// IsOutdated reports whether any scenario is stale.
func (b *ProgramBook) IsOutdated() bool {
	for i := range b.PriorityScenarios {
		if b.PriorityScenarios[i].Outdated {
			return true
		}
	}
	return false
}

// RemoveOrderedProject drops the project from every scenario's ranking and
// records it in RemovedProjectIDs.
func (b *ProgramBook) RemoveOrderedProject(projectID uuid.UUID) {
	for i := range b.PriorityScenarios {
		kept := b.PriorityScenarios[i].OrderedProjects[:0]
		for _, op := range b.PriorityScenarios[i].OrderedProjects {
			if op.ProjectID != projectID {
				kept = append(kept, op)
			}
		}
		b.PriorityScenarios[i].OrderedProjects = kept
	}
	if !b.RemovedProjectIDs.Contains(projectID) {
		b.RemovedProjectIDs = append(b.RemovedProjectIDs, projectID)
	}
}

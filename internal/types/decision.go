package types

import (
	"time"

	"github.com/google/uuid"
)

// Audit stamps who did what and when. The actor always comes from the
// request; decisions are never stamped from ambient state.
type Audit struct {
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Decision is one entry of the append-only decision ledger attached to a
// project or intervention. Once appended it is never mutated, only
// superseded by newer entries.
type Decision struct {
	ID     uuid.UUID    `json:"id"`
	TypeID DecisionType `json:"type_id"`
	Text   string       `json:"text,omitempty"`
	Audit  Audit        `json:"audit"`

	// TargetYear moves planification/intervention years on accept-like
	// transitions. StartYear/EndYear carry the requested range for
	// postponed/replanned decisions.
	TargetYear *int `json:"target_year,omitempty"`
	StartYear  *int `json:"start_year,omitempty"`
	EndYear    *int `json:"end_year,omitempty"`

	// AnnualPeriodYear names the period to detach for removeFromProgramBook.
	AnnualPeriodYear *int `json:"annual_period_year,omitempty"`

	// Previous* record the pre-decision values for audit.
	PreviousPlanificationYear *int `json:"previous_planification_year,omitempty"`
	PreviousStartYear         *int `json:"previous_start_year,omitempty"`
	PreviousEndYear           *int `json:"previous_end_year,omitempty"`
}

// DecisionList is stored newest first: index 0 is always the most recent
// decision. Consumers rely on this ordering.
type DecisionList []Decision

// Prepend inserts a decision at index 0.
func (l DecisionList) Prepend(d Decision) DecisionList {
	out := make(DecisionList, 0, len(l)+1)
	out = append(out, d)
	out = append(out, l...)
	return out
}

// Latest returns the most recent decision, or nil when the ledger is empty.
func (l DecisionList) Latest() *Decision {
	if len(l) == 0 {
		return nil
	}
	return &l[0]
}

// HasType reports whether any decision of the given type exists.
func (l DecisionList) HasType(t DecisionType) bool {
	for i := range l {
		if l[i].TypeID == t {
			return true
		}
	}
	return false
}

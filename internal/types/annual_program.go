package types

import (
	"time"

	"github.com/google/uuid"
)

// AnnualProgram owns zero or more program books for a calendar year. Its
// status is derived from the statuses of its books.
type AnnualProgram struct {
	ID     uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Year   int                 `gorm:"column:year;not null;index" json:"year"`
	Status AnnualProgramStatus `gorm:"column:status;not null" json:"status"`

	ExecutorID string  `gorm:"column:executor_id" json:"executor_id"`
	Budget     float64 `gorm:"column:budget;not null;default:0" json:"budget"`

	ProgramBooks []*ProgramBook `gorm:"foreignKey:AnnualProgramID;references:ID" json:"program_books,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AnnualProgram) TableName() string { return "annual_program" }

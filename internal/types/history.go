package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HistoryRecord is a write-only audit entry. Records are appended and never
// read back by the core.
type HistoryRecord struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ObjectTypeID string    `gorm:"column:object_type_id;not null;index" json:"object_type_id"`
	ReferenceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"reference_id"`

	Actor      string         `gorm:"column:actor;not null" json:"actor"`
	Action     string         `gorm:"column:action;not null" json:"action"`
	Comment    string         `gorm:"column:comment" json:"comment,omitempty"`
	Categories []string       `gorm:"column:categories;serializer:json" json:"categories,omitempty"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (HistoryRecord) TableName() string { return "history_record" }

// Object type ids written to the history sink.
const (
	HistoryObjectProject      = "project"
	HistoryObjectIntervention = "intervention"
	HistoryObjectProgramBook  = "programBook"
)

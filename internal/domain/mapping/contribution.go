package mapping

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContributionScan        = "scan"
	ContributionManual      = "manual"
	ContributionConfirm     = "confirm"
	ContributionReport      = "report"
	ContributionPropagation = "propagation"
)

// Contribution is one submitted observation event. Rows are append-only:
// never updated, never deleted. ContributorID is nil for system-generated
// propagation entries.
type Contribution struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubjectKind   string     `gorm:"not null;column:subject_kind" json:"subject_kind"`
	SubjectKey    string     `gorm:"not null;index;column:subject_key" json:"subject_key"`
	StoreID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_contribution_store_contributor;column:store_id" json:"store_id"`
	ContributorID *uuid.UUID `gorm:"type:uuid;index:idx_contribution_store_contributor;column:contributor_id" json:"contributor_id,omitempty"`

	Kind            string  `gorm:"not null;column:kind" json:"kind"`
	ConfidenceDelta float64 `gorm:"not null;column:confidence_delta" json:"confidence_delta"`
	PointsAwarded   int     `gorm:"not null;default:0;column:points_awarded" json:"points_awarded"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Contribution) TableName() string { return "contribution" }

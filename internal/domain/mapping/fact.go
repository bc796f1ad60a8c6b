package mapping

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SubjectKindAisle           = "aisle"
	SubjectKindDepartment      = "department"
	SubjectKindProductLocation = "product_location"
	SubjectKindPrice           = "price"
)

const (
	OriginDirect     = "direct"
	OriginPropagated = "propagated"
)

// Fact is the current best-known value for one crowdsourced subject. Exactly
// one row exists per subject_key; contributions merge into it via a single
// conditional upsert, never via read-then-write.
type Fact struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubjectKind string    `gorm:"not null;index;column:subject_kind" json:"subject_kind"`
	SubjectKey  string    `gorm:"uniqueIndex;not null;column:subject_key" json:"subject_key"`
	StoreID     uuid.UUID `gorm:"type:uuid;not null;index;column:store_id" json:"store_id"`

	// Value holds one JSON shape per subject kind (crowd.AisleValue,
	// crowd.DepartmentValue, crowd.LocationValue, crowd.PriceValue).
	Value datatypes.JSON `gorm:"type:jsonb;not null;column:value" json:"value"`

	Confidence    float64 `gorm:"not null;column:confidence" json:"confidence"`
	VerifiedCount int     `gorm:"not null;default:0;column:verified_count" json:"verified_count"`

	Origin        string     `gorm:"not null;default:'direct';column:origin" json:"origin"`
	SourceFactID  *uuid.UUID `gorm:"type:uuid;column:source_fact_id" json:"source_fact_id,omitempty"`
	SourceStoreID *uuid.UUID `gorm:"type:uuid;column:source_store_id" json:"source_store_id,omitempty"`

	LastVerifiedAt time.Time `gorm:"not null;default:now();column:last_verified_at" json:"last_verified_at"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Fact) TableName() string { return "fact" }

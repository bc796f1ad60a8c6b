package mapping

import (
	"time"

	"github.com/google/uuid"
)

// ExplorerBonus marks a contributor's first-ever contribution to a store. The
// unique index is the concurrency guard: award is an insert-if-absent, so two
// racing first contributions produce exactly one bonus row.
type ExplorerBonus struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContributorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_explorer_bonus_pair;column:contributor_id" json:"contributor_id"`
	StoreID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_explorer_bonus_pair;column:store_id" json:"store_id"`
	Points        int       `gorm:"not null;column:points" json:"points"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ExplorerBonus) TableName() string { return "explorer_bonus" }

// Badge is an earned achievement. Inserting an already-held badge is a no-op.
type Badge struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContributorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_badge_pair;column:contributor_id" json:"contributor_id"`
	Code          string    `gorm:"not null;uniqueIndex:idx_badge_pair;column:code" json:"code"`
	AwardedAt     time.Time `gorm:"not null;default:now();column:awarded_at" json:"awarded_at"`
}

func (Badge) TableName() string { return "badge" }

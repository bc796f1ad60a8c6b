package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Store is a physical grocery location. Chain membership is not modeled as a
// column: two stores belong to the same chain when the first whitespace token
// of their names matches case-insensitively.
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null;index;column:name" json:"name"`
	Address   string    `gorm:"column:address" json:"address,omitempty"`
	Latitude  float64   `gorm:"not null;column:latitude" json:"latitude"`
	Longitude float64   `gorm:"not null;column:longitude" json:"longitude"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Store) TableName() string { return "store" }

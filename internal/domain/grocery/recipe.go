package grocery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Recipe struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Title        string         `gorm:"not null;column:title" json:"title"`
	Ingredients  datatypes.JSON `gorm:"type:jsonb;column:ingredients" json:"ingredients"` // []string
	Instructions string         `gorm:"type:text;column:instructions" json:"instructions,omitempty"`
	Servings     int            `gorm:"not null;default:1;column:servings" json:"servings"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Recipe) TableName() string { return "recipe" }

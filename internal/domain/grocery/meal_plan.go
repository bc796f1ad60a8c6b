package grocery

import (
	"time"

	"github.com/google/uuid"
)

const (
	MealSlotBreakfast = "breakfast"
	MealSlotLunch     = "lunch"
	MealSlotDinner    = "dinner"
	MealSlotSnack     = "snack"
)

type MealPlanEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	RecipeID   uuid.UUID `gorm:"type:uuid;not null;column:recipe_id" json:"recipe_id"`
	PlannedFor time.Time `gorm:"type:date;not null;index;column:planned_for" json:"planned_for"`
	Slot       string    `gorm:"not null;default:'dinner';column:slot" json:"slot"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MealPlanEntry) TableName() string { return "meal_plan_entry" }

package grocery

import (
	"time"

	"github.com/google/uuid"
)

type ShoppingList struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ShoppingList) TableName() string { return "shopping_list" }

type ShoppingListItem struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListID   uuid.UUID `gorm:"type:uuid;not null;index;column:list_id" json:"list_id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Barcode  *string   `gorm:"column:barcode" json:"barcode,omitempty"`
	Quantity int       `gorm:"not null;default:1;column:quantity" json:"quantity"`
	Checked  bool      `gorm:"not null;default:false;column:checked" json:"checked"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ShoppingListItem) TableName() string { return "shopping_list_item" }

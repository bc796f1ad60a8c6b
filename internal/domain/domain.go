package domain

import (
	"github.com/yungbote/aislemap-backend/internal/domain/catalog"
	"github.com/yungbote/aislemap-backend/internal/domain/grocery"
	"github.com/yungbote/aislemap-backend/internal/domain/mapping"
	"github.com/yungbote/aislemap-backend/internal/domain/user"
)

type User = user.User

type Store = catalog.Store

type Fact = mapping.Fact
type Contribution = mapping.Contribution
type ExplorerBonus = mapping.ExplorerBonus
type Badge = mapping.Badge

type ShoppingList = grocery.ShoppingList
type ShoppingListItem = grocery.ShoppingListItem
type Recipe = grocery.Recipe
type MealPlanEntry = grocery.MealPlanEntry

const (
	SubjectKindAisle           = mapping.SubjectKindAisle
	SubjectKindDepartment      = mapping.SubjectKindDepartment
	SubjectKindProductLocation = mapping.SubjectKindProductLocation
	SubjectKindPrice           = mapping.SubjectKindPrice

	OriginDirect     = mapping.OriginDirect
	OriginPropagated = mapping.OriginPropagated

	ContributionScan        = mapping.ContributionScan
	ContributionManual      = mapping.ContributionManual
	ContributionConfirm     = mapping.ContributionConfirm
	ContributionReport      = mapping.ContributionReport
	ContributionPropagation = mapping.ContributionPropagation

	MealSlotBreakfast = grocery.MealSlotBreakfast
	MealSlotLunch     = grocery.MealSlotLunch
	MealSlotDinner    = grocery.MealSlotDinner
	MealSlotSnack     = grocery.MealSlotSnack
)

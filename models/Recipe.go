package models

import (
	"gorm.io/gorm"
)

type Recipe struct {
	gorm.Model
	Name         string             `gorm:"not null" json:"name"`
	Yield        float64            `gorm:"not null;default:1" json:"yield"`
	YieldUnit    string             `json:"yield_unit"`
	Instructions string             `gorm:"type:text" json:"instructions"`
	Ingredients  []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

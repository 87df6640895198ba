package models

import (
	"strings"

	"gorm.io/gorm"
)

// Ingredient is a purchasable item priced per base unit.
type Ingredient struct {
	gorm.Model
	Name                string   `gorm:"uniqueIndex;not null" json:"name"`
	BaseUnit            string   `gorm:"type:varchar(16);not null;default:g" json:"base_unit"`
	CostPerUnit         float64  `gorm:"not null;default:0" json:"cost_per_unit"`
	CostPerUnitInclTrim *float64 `json:"cost_per_unit_incl_trim,omitempty"`
	TrimPercent         float64  `gorm:"not null;default:0" json:"trim_percent"`
	YieldPercent        float64  `gorm:"not null;default:100" json:"yield_percent"`
	Category            string   `gorm:"index" json:"category"`
	Supplier            string   `json:"supplier"`
	Notes               string   `gorm:"type:text" json:"notes"`
}

// BeforeSave trims the identifying fields so lookups by name stay stable.
func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.Name = strings.TrimSpace(i.Name)
	i.BaseUnit = strings.ToLower(strings.TrimSpace(i.BaseUnit))
	i.Category = strings.TrimSpace(i.Category)
	return nil
}

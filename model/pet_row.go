package model

import (
	"time"

	"gorm.io/datatypes"
)

// PetRow is the cloud backup row for one pet, keyed by player id.
// Stats and Inventory are stored as JSON so the row survives schema
// drift between client versions.
type PetRow struct {
	ID         string         `gorm:"primaryKey;size:64" json:"id"`
	Stats      datatypes.JSON `json:"stats"`
	LastLogin  time.Time      `gorm:"index" json:"last_login"`
	Inventory  datatypes.JSON `json:"inventory"`
	PetName    string         `gorm:"size:24" json:"pet_name"`
	PlayerName string         `gorm:"size:24" json:"player_name"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PetRow) TableName() string { return "pet_rows" }

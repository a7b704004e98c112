package models

import (
	"time"
)

// CreatorPackage is a recurring monthly offer published by a creator.
type CreatorPackage struct {
	ID           string               `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatorID    string               `json:"creatorId" gorm:"type:uuid;not null;index"`
	Name         string               `json:"name" gorm:"not null"`
	Description  string               `json:"description"`
	MonthlyPrice float64              `json:"monthlyPrice" gorm:"type:numeric(10,2);not null"`
	Deliverables []PackageDeliverable `json:"deliverables" gorm:"foreignKey:PackageID"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// PackageDeliverable configures the per-cycle quota for one (type, platform)
// pair, e.g. 3 posts on Instagram per month.
type PackageDeliverable struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PackageID string `json:"packageId" gorm:"type:uuid;not null;index"`
	Type      string `json:"type" gorm:"type:varchar(30);not null"`
	Platform  string `json:"platform" gorm:"type:varchar(30);not null"`
	Quantity  int    `json:"quantity" gorm:"not null"`
}

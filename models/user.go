package models

import (
	"time"
)

type Role string

const (
	AdminRole   Role = "ADMIN"
	BrandRole   Role = "BRAND"
	CreatorRole Role = "CREATOR"
)

type User struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email            string    `json:"email" gorm:"uniqueIndex;not null"`
	Password         string    `json:"-" gorm:"not null"`
	UserName         string    `json:"username"`
	Role             Role      `json:"role" gorm:"type:varchar(20);default:'BRAND'"`
	StripeCustomerId string    `json:"stripeCustomerId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UserCreate is the register request body.
type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// UserLogin is the login request body.
type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

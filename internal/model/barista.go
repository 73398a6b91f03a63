package model

import "time"

// Barista is a staff member. Every transaction record is attributed to one.
// Role: "barista" | "admin"
type Barista struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null;default:'barista'"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Shops []Shop `gorm:"many2many:shop_baristas"`
}

const (
	RoleBarista = "barista"
	RoleAdmin   = "admin"
)

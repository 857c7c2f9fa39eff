package models

import (
	"time"

	"github.com/google/uuid"
)

type Supplier struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	Website     *string   `json:"website" db:"website"`
	Address     *string   `json:"address" db:"address"`
	Image       *string   `json:"image" db:"image"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products. AssignedTo points at the employee responsible for
// the category; it is nulled when that user is deleted, never cascaded.
type Category struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	AssignedTo  *uuid.UUID `json:"assigned_to" db:"assigned_to"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

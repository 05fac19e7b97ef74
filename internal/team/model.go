package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table. Pure grouping entity.
type Team struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

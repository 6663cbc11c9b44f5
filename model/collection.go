package model

import (
	"time"

	"github.com/google/uuid"
)

// Collection is a named set of chunks
type Collection struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Name      string    `json:"name"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

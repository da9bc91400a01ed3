package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Lifecycle states shared by every entity. Records are never hard-deleted;
// they transition to Deleted and drop out of default listings.
const (
	StateActive  = "Active"
	StateDeleted = "Deleted"
)

type State struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null;index" json:"name"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (State) TableName() string {
	return "states"
}

type Service interface {
	GetByName(ctx context.Context, name string) (State, error)
	ActiveID(ctx context.Context) (snowflake.ID, error)
	DeletedID(ctx context.Context) (snowflake.ID, error)
}

var ErrUnknownState = errors.New("unknown_state")

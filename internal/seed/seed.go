package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
	"gorm.io/gorm"
)

// EnsureStates seeds the lifecycle states every entity references.
func EnsureStates(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	states := []statedomain.State{
		{Name: statedomain.StateActive, Description: "Record is live and visible in listings"},
		{Name: statedomain.StateDeleted, Description: "Record is retired; retained for integrity"},
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, state := range states {
			var existing statedomain.State
			err := tx.WithContext(ctx).
				Where("name = ?", state.Name).
				First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			now := time.Now().UTC()
			state.ID = node.Generate()
			state.CreatedAt = now
			state.UpdatedAt = now
			if err := tx.WithContext(ctx).Create(&state).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

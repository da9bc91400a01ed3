package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/coverbase/pkg/db/option"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string
	Rank      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(&widget{}))
	return conn
}

func TestFindOneDistinguishesNotFound(t *testing.T) {
	ctx := context.Background()
	store := repository.ProvideStore[widget](setupTestDB(t))

	item, err := store.FindOne(ctx, &widget{Name: "missing"})
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestCreateAndFindOne(t *testing.T) {
	ctx := context.Background()
	store := repository.ProvideStore[widget](setupTestDB(t))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	created := widget{ID: node.Generate(), Name: "alpha"}
	require.NoError(t, store.Create(ctx, &created))

	item, err := store.FindOne(ctx, &widget{Name: "alpha"})
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Equal(t, created.ID, item.ID)
}

func TestFindAppliesOptions(t *testing.T) {
	ctx := context.Background()
	store := repository.ProvideStore[widget](setupTestDB(t))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Create(ctx, &widget{ID: node.Generate(), Name: name, Rank: i}))
	}

	items, err := store.Find(ctx, &widget{},
		option.Where("rank > ?", 0),
		option.OrderBy("rank DESC"),
	)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "c", items[0].Name)
	require.Equal(t, "b", items[1].Name)
}

func TestUpdateReturnsAuthoritativeState(t *testing.T) {
	ctx := context.Background()
	store := repository.ProvideStore[widget](setupTestDB(t))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	created := widget{ID: node.Generate(), Name: "before"}
	require.NoError(t, store.Create(ctx, &created))

	updated, err := store.Update(ctx, created.ID, map[string]any{"name": "after"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "after", updated.Name)

	missing, err := store.Update(ctx, node.Generate(), map[string]any{"name": "nope"})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestWithTrxRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	store := repository.ProvideStore[widget](conn)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := store.WithTrx(tx).Create(ctx, &widget{ID: node.Generate(), Name: "ghost"}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	count, err := store.Count(ctx, &widget{})
	require.NoError(t, err)
	require.Zero(t, count)
}

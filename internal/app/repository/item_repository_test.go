package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveItems(t *testing.T, repos *Repositories) []*model.Item {
	t.Helper()
	items := make([]*model.Item, 0, 10)
	for i := 1; i <= 10; i++ {
		item, err := repos.Items.Save(context.Background(), &model.Item{
			Name:        fmt.Sprintf("테스트 상품%d", i),
			Price:       10000 + i,
			Detail:      fmt.Sprintf("테스트 상품 상세 설명%d", i),
			SellStatus:  model.ItemSell,
			StockNumber: 100,
		})
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func TestItemRepository_Save(t *testing.T) {
	ctx := context.Background()
	repos := setupRepositoryTest(t)

	item, err := repos.Items.Save(ctx, createItem())
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.False(t, item.RegTime.IsZero())
	assert.True(t, repos.Session().Contains(item))
}

func TestItemRepository_FindByItemNm(t *testing.T) {
	ctx := context.Background()
	repos := setupRepositoryTest(t)
	items := saveItems(t, repos)

	found, err := repos.Items.FindByItemNm(ctx, "테스트 상품1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Same(t, items[0], found[0])
}

func TestItemRepository_FindByPriceLessThan(t *testing.T) {
	ctx := context.Background()
	repos := setupRepositoryTest(t)
	saveItems(t, repos)

	found, err := repos.Items.FindByPriceLessThan(ctx, 10005)
	require.NoError(t, err)
	require.Len(t, found, 4)
	assert.Equal(t, 10004, found[0].Price)
	assert.Equal(t, 10001, found[3].Price)
}

func TestItemRepository_UpdateWrittenAtFlush(t *testing.T) {
	ctx := context.Background()
	repos := setupRepositoryTest(t)
	item, err := repos.Items.SaveAndFlush(ctx, createItem())
	require.NoError(t, err)

	item.Price = 12000
	require.NoError(t, item.RemoveStock(100))

	updates := func() int {
		n := 0
		for _, c := range repos.Session().Changes() {
			if c.Kind == persistence.ChangeUpdate && c.Table == "items" {
				n++
			}
		}
		return n
	}
	assert.Zero(t, updates())

	require.NoError(t, repos.Flush(ctx))
	assert.Equal(t, 1, updates())

	repos.Clear()
	reloaded, ok, err := repos.Items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12000, reloaded.Price)
	assert.Equal(t, 0, reloaded.StockNumber)
	assert.Equal(t, model.ItemSoldOut, reloaded.SellStatus)
}

func TestItemRepository_SaveDetachedCopy(t *testing.T) {
	ctx := context.Background()
	repos := setupRepositoryTest(t)
	item, err := repos.Items.SaveAndFlush(ctx, createItem())
	require.NoError(t, err)
	repos.Clear()

	detached := *item
	detached.Detail = "변경된 설명"
	managed, err := repos.Items.SaveAndFlush(ctx, &detached)
	require.NoError(t, err)
	assert.Same(t, &detached, managed)

	repos.Clear()
	reloaded, ok, err := repos.Items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "변경된 설명", reloaded.Detail)
}

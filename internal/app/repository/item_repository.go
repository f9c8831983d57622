package repository

import (
	"context"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Repository[*model.Item]
	FindByItemNm(ctx context.Context, name string) ([]*model.Item, error)
	FindByPriceLessThan(ctx context.Context, price int) ([]*model.Item, error)
}

type itemRepository struct {
	*gateway[*model.Item]
}

func NewItemRepository(s *persistence.Session) ItemRepository {
	return &itemRepository{gateway: newGateway[*model.Item](s, "item")}
}

func (r *itemRepository) FindByItemNm(ctx context.Context, name string) ([]*model.Item, error) {
	logger.Debug("Finding items by name", map[string]interface{}{
		"item_nm": name,
	})

	items, err := persistence.Query[*model.Item](ctx, r.session, func(db *gorm.DB) *gorm.DB {
		return db.Where("item_nm = ?", name).Order("id")
	})
	if err != nil {
		logger.Error("Failed to find items by name", err, map[string]interface{}{
			"item_nm": name,
		})
		return nil, err
	}

	logger.Debug("Items found by name", map[string]interface{}{
		"item_nm": name,
		"count":   len(items),
	})
	return items, nil
}

// FindByPriceLessThan returns items cheaper than price, most expensive first.
func (r *itemRepository) FindByPriceLessThan(ctx context.Context, price int) ([]*model.Item, error) {
	logger.Debug("Finding items by price", map[string]interface{}{
		"price_lt": price,
	})

	items, err := persistence.Query[*model.Item](ctx, r.session, func(db *gorm.DB) *gorm.DB {
		return db.Where("price < ?", price).Order("price DESC").Order("id")
	})
	if err != nil {
		logger.Error("Failed to find items by price", err, map[string]interface{}{
			"price_lt": price,
		})
		return nil, err
	}
	return items, nil
}

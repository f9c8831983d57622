package repository

import (
	"context"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Repository[*model.Order]
	FindByMemberEmail(ctx context.Context, email string) ([]*model.Order, error)
}

type orderRepository struct {
	*gateway[*model.Order]
}

func NewOrderRepository(s *persistence.Session) OrderRepository {
	return &orderRepository{gateway: newGateway[*model.Order](s, "order")}
}

// FindByMemberEmail returns the orders placed by the member with email,
// newest first.
func (r *orderRepository) FindByMemberEmail(ctx context.Context, email string) ([]*model.Order, error) {
	logger.Debug("Finding orders by member email", map[string]interface{}{
		"email": email,
	})

	orders, err := persistence.Query[*model.Order](ctx, r.session, func(db *gorm.DB) *gorm.DB {
		return db.Where("member_id IN (SELECT id FROM members WHERE email = ?)", email).
			Order("order_date DESC").
			Order("id DESC")
	})
	if err != nil {
		logger.Error("Failed to find orders by member email", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Debug("Orders found by member email", map[string]interface{}{
		"email": email,
		"count": len(orders),
	})
	return orders, nil
}

type OrderItemRepository interface {
	Repository[*model.OrderItem]
	FindByOrderID(ctx context.Context, orderID uint) ([]*model.OrderItem, error)
}

type orderItemRepository struct {
	*gateway[*model.OrderItem]
}

func NewOrderItemRepository(s *persistence.Session) OrderItemRepository {
	return &orderItemRepository{gateway: newGateway[*model.OrderItem](s, "order_item")}
}

func (r *orderItemRepository) FindByOrderID(ctx context.Context, orderID uint) ([]*model.OrderItem, error) {
	items, err := persistence.Query[*model.OrderItem](ctx, r.session, func(db *gorm.DB) *gorm.DB {
		return db.Where("order_id = ?", orderID).Order("id")
	})
	if err != nil {
		logger.Error("Failed to find order items", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return items, nil
}

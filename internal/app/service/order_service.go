package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/app/repository"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrInvalidOrder          = errors.New("invalid order")
)

// OrderLine 주문 요청 항목
type OrderLine struct {
	ItemID uint
	Count  int
}

// OrderHistory 회원 주문 내역
type OrderHistory struct {
	OrderID     uint
	OrderDate   time.Time
	OrderStatus model.OrderStatus
	TotalPrice  int
	Lines       []OrderHistoryLine
}

type OrderHistoryLine struct {
	ItemID     uint
	ItemName   string
	OrderPrice int
	Count      int
}

type OrderService interface {
	Order(ctx context.Context, email string, lines ...OrderLine) (*model.Order, error)
	Cancel(ctx context.Context, orderID uint) error
	GetOrderHistory(ctx context.Context, email string) ([]OrderHistory, error)
}

type orderService struct {
	manager *persistence.Manager
}

func NewOrderService(manager *persistence.Manager) OrderService {
	return &orderService{manager: manager}
}

// Order places an order for the member with email. Stock of every ordered
// item is reduced in the same transaction.
func (s *orderService) Order(ctx context.Context, email string, lines ...OrderLine) (*model.Order, error) {
	logger.Info("Placing order", map[string]interface{}{
		"email": email,
		"lines": len(lines),
	})

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no order lines", ErrInvalidOrder)
	}
	for _, line := range lines {
		if line.Count <= 0 {
			return nil, fmt.Errorf("%w: count must be positive (item %d)", ErrInvalidOrder, line.ItemID)
		}
	}

	var order *model.Order
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		repos := repository.New(tx)

		member, ok, err := repos.Members.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if !ok {
			return ErrMemberNotFound
		}

		orderItems := make([]*model.OrderItem, 0, len(lines))
		for _, line := range lines {
			item, ok, err := repos.Items.FindByID(ctx, line.ItemID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %d", ErrItemNotFound, line.ItemID)
			}
			orderItem, err := model.NewOrderItem(item, line.Count)
			if err != nil {
				logger.Warn("Not enough stock", map[string]interface{}{
					"item_id":   item.ID,
					"stock":     item.StockNumber,
					"requested": line.Count,
				})
				return err
			}
			orderItems = append(orderItems, orderItem)
		}

		order, err = repos.Orders.Save(ctx, model.NewOrder(member, orderItems...))
		return err
	})
	if err != nil {
		logger.Error("Failed to place order", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id":    order.ID,
		"total_price": order.TotalPrice(),
	})
	return order, nil
}

// Cancel cancels the order and puts its items back in stock.
func (s *orderService) Cancel(ctx context.Context, orderID uint) error {
	logger.Info("Cancelling order", map[string]interface{}{
		"order_id": orderID,
	})

	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		order, ok, err := repository.New(tx).Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderNotFound
		}
		if err := order.Cancel(ctx); err != nil {
			if errors.Is(err, model.ErrAlreadyCancelled) {
				return ErrOrderAlreadyCancelled
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Warn("Order cancellation failed", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return err
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}

// GetOrderHistory lists the member's orders, newest first, with item names
// resolved while the transaction is open.
func (s *orderService) GetOrderHistory(ctx context.Context, email string) ([]OrderHistory, error) {
	var history []OrderHistory
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		orders, err := repository.New(tx).Orders.FindByMemberEmail(ctx, email)
		if err != nil {
			return err
		}

		history = make([]OrderHistory, 0, len(orders))
		for _, order := range orders {
			h := OrderHistory{
				OrderID:     order.ID,
				OrderDate:   order.OrderDate,
				OrderStatus: order.OrderStatus,
				TotalPrice:  order.TotalPrice(),
				Lines:       make([]OrderHistoryLine, 0, len(order.OrderItems)),
			}
			for _, orderItem := range order.OrderItems {
				item, err := orderItem.Item.Get(ctx)
				if err != nil {
					return err
				}
				h.Lines = append(h.Lines, OrderHistoryLine{
					ItemID:     item.ID,
					ItemName:   item.Name,
					OrderPrice: orderItem.OrderPrice,
					Count:      orderItem.Count,
				})
			}
			history = append(history, h)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to load order history", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	return history, nil
}

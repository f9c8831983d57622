package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/shopp-backend/internal/persistence"
	"gorm.io/gorm"
)

type OrderStatus string // 주문 상태 코드

const (
	OrderStatusOrder  OrderStatus = "ORDER"  // 주문
	OrderStatusCancel OrderStatus = "CANCEL" // 주문 취소
)

var ErrAlreadyCancelled = errors.New("order is already cancelled")

// Order owns its OrderItems: items appended to the collection are saved with
// the order, items removed from it are deleted on the next flush.
type Order struct {
	ID          uint        `gorm:"primarykey" json:"id"`                          // 주문 ID
	MemberID    *uint       `gorm:"index" json:"member_id,omitempty"`              // 주문자 ID
	OrderDate   time.Time   `gorm:"not null" json:"order_date"`                    // 주문 일시
	OrderStatus OrderStatus `gorm:"type:varchar(20);not null" json:"order_status"` // 주문 상태
	RegTime     time.Time   `gorm:"autoCreateTime" json:"reg_time"`                // 등록 시각
	UpdateTime  time.Time   `gorm:"autoUpdateTime" json:"update_time"`             // 수정 시각

	Member     persistence.Ref[*Member] `gorm:"-" json:"-"`                                                                  // 주문자 (지연 로딩)
	OrderItems []*OrderItem             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"` // 주문 항목 목록
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) GetID() uint {
	return o.ID
}

// NewOrder builds an order placed now by member with the given lines.
func NewOrder(member *Member, items ...*OrderItem) *Order {
	order := &Order{
		Member:      persistence.RefTo(member),
		OrderDate:   time.Now(),
		OrderStatus: OrderStatusOrder,
	}
	for _, item := range items {
		order.AddOrderItem(item)
	}
	return order
}

// AddOrderItem appends item to the order and points it back at the order.
func (o *Order) AddOrderItem(item *OrderItem) {
	item.Order = persistence.RefTo(o)
	o.OrderItems = append(o.OrderItems, item)
}

// TotalPrice sums every line of the order.
func (o *Order) TotalPrice() int {
	total := 0
	for _, item := range o.OrderItems {
		total += item.TotalPrice()
	}
	return total
}

// Cancel marks the order cancelled and returns every line's stock.
func (o *Order) Cancel(ctx context.Context) error {
	if o.OrderStatus == OrderStatusCancel {
		return ErrAlreadyCancelled
	}
	for _, item := range o.OrderItems {
		if err := item.Cancel(ctx); err != nil {
			return err
		}
	}
	o.OrderStatus = OrderStatusCancel
	return nil
}

func (o *Order) Children() []persistence.Entity {
	children := make([]persistence.Entity, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		children = append(children, item)
	}
	return children
}

func (o *Order) Adopt(child persistence.Entity) {
	if item, ok := child.(*OrderItem); ok {
		item.OrderID = o.ID
		item.Order = persistence.RefTo(o)
	}
}

func (o *Order) Replace(children []persistence.Entity) {
	items := make([]*OrderItem, 0, len(children))
	for _, child := range children {
		if item, ok := child.(*OrderItem); ok {
			item.Order = persistence.RefTo(o)
			items = append(items, item)
		}
	}
	o.OrderItems = items
}

func (o *Order) ChildTable() (string, string) {
	return OrderItem{}.TableName(), "order_id"
}

func (o *Order) SyncForeignKeys() error {
	if o.Member.IsZero() {
		o.MemberID = nil
		return nil
	}
	if o.Member.Transient() {
		return fmt.Errorf("order member: %w", persistence.ErrTransientReference)
	}
	id := o.Member.ID()
	o.MemberID = &id
	return nil
}

func (o *Order) OnLoad(ctx context.Context, s *persistence.Session) error {
	if o.MemberID != nil {
		o.Member = persistence.Reference[*Member](s, *o.MemberID)
	}
	items, err := persistence.Query[*OrderItem](ctx, s, func(db *gorm.DB) *gorm.DB {
		return db.Where("order_id = ?", o.ID).Order("id")
	})
	if err != nil {
		return err
	}
	o.OrderItems = items
	return nil
}

type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`              // 주문 항목 ID
	OrderID    uint      `gorm:"not null;index" json:"order_id"`    // 주문 ID
	ItemID     uint      `gorm:"not null;index" json:"item_id"`     // 상품 ID
	OrderPrice int       `gorm:"not null" json:"order_price"`       // 주문 단가
	Count      int       `gorm:"not null" json:"count"`             // 수량
	RegTime    time.Time `gorm:"autoCreateTime" json:"reg_time"`    // 등록 시각
	UpdateTime time.Time `gorm:"autoUpdateTime" json:"update_time"` // 수정 시각

	Order persistence.Ref[*Order] `gorm:"-" json:"-"` // 주문 (지연 로딩)
	Item  persistence.Ref[*Item]  `gorm:"-" json:"-"` // 상품 (지연 로딩)
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (oi *OrderItem) GetID() uint {
	return oi.ID
}

// NewOrderItem takes count units of item out of stock and records the line at
// the item's current price.
func NewOrderItem(item *Item, count int) (*OrderItem, error) {
	if err := item.RemoveStock(count); err != nil {
		return nil, err
	}
	return &OrderItem{
		Item:       persistence.RefTo(item),
		OrderPrice: item.Price,
		Count:      count,
	}, nil
}

// TotalPrice is the line total.
func (oi *OrderItem) TotalPrice() int {
	return oi.OrderPrice * oi.Count
}

// Cancel returns the line's units to the item stock.
func (oi *OrderItem) Cancel(ctx context.Context) error {
	item, err := oi.Item.Get(ctx)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	return item.AddStock(oi.Count)
}

func (oi *OrderItem) SyncForeignKeys() error {
	if oi.Order.Transient() || oi.Item.Transient() {
		return fmt.Errorf("order item: %w", persistence.ErrTransientReference)
	}
	if id := oi.Order.ID(); id != 0 {
		oi.OrderID = id
	}
	if id := oi.Item.ID(); id != 0 {
		oi.ItemID = id
	}
	return nil
}

func (oi *OrderItem) OnLoad(_ context.Context, s *persistence.Session) error {
	oi.Order = persistence.Reference[*Order](s, oi.OrderID)
	oi.Item = persistence.Reference[*Item](s, oi.ItemID)
	return nil
}

package model

import (
	"errors"
	"fmt"
	"time"
)

type ItemSellStatus string // 상품 판매 상태

const (
	ItemSell    ItemSellStatus = "SELL"     // 판매 중
	ItemSoldOut ItemSellStatus = "SOLD_OUT" // 품절
)

var (
	ErrOutOfStock      = errors.New("not enough stock")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type Item struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                        // 상품 ID
	Name        string         `gorm:"column:item_nm;size:50;not null" json:"name"`                 // 상품명
	Price       int            `gorm:"not null" json:"price"`                                       // 가격
	Detail      string         `gorm:"column:item_detail;type:text" json:"detail"`                  // 상세 설명
	SellStatus  ItemSellStatus `gorm:"column:item_sell_status;type:varchar(20)" json:"sell_status"` // 판매 상태
	StockNumber int            `gorm:"not null" json:"stock_number"`                                // 재고 수량
	RegTime     time.Time      `gorm:"autoCreateTime" json:"reg_time"`                              // 등록 시각
	UpdateTime  time.Time      `gorm:"autoUpdateTime" json:"update_time"`                           // 수정 시각
}

func (Item) TableName() string {
	return "items"
}

func (i *Item) GetID() uint {
	return i.ID
}

// RemoveStock takes n units out of stock and marks the item sold out when
// nothing is left.
func (i *Item) RemoveStock(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, n)
	}
	rest := i.StockNumber - n
	if rest < 0 {
		return fmt.Errorf("%w: item %d has %d, requested %d", ErrOutOfStock, i.ID, i.StockNumber, n)
	}
	i.StockNumber = rest
	if rest == 0 {
		i.SellStatus = ItemSoldOut
	}
	return nil
}

// AddStock puts n units back and reopens a sold out item.
func (i *Item) AddStock(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, n)
	}
	i.StockNumber += n
	if i.SellStatus == ItemSoldOut {
		i.SellStatus = ItemSell
	}
	return nil
}

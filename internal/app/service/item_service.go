package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/app/repository"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidItem  = errors.New("invalid item")
)

// ItemInput 상품 등록/수정 입력값
type ItemInput struct {
	Name        string
	Price       int
	Detail      string
	StockNumber int
}

func (in ItemInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	case in.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	case in.StockNumber < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidItem)
	}
	return nil
}

func (in ItemInput) sellStatus() model.ItemSellStatus {
	if in.StockNumber == 0 {
		return model.ItemSoldOut
	}
	return model.ItemSell
}

type ItemService interface {
	Register(ctx context.Context, input ItemInput) (*model.Item, error)
	RegisterAll(ctx context.Context, inputs []ItemInput) ([]*model.Item, error)
	Update(ctx context.Context, id uint, input ItemInput) (*model.Item, error)
	GetItemByID(ctx context.Context, id uint) (*model.Item, error)
	SearchByName(ctx context.Context, name string) ([]*model.Item, error)
	ListCheaperThan(ctx context.Context, price int) ([]*model.Item, error)
}

type itemService struct {
	manager *persistence.Manager
}

func NewItemService(manager *persistence.Manager) ItemService {
	return &itemService{manager: manager}
}

func (s *itemService) Register(ctx context.Context, input ItemInput) (*model.Item, error) {
	items, err := s.RegisterAll(ctx, []ItemInput{input})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// RegisterAll stores every item in one transaction. Nothing is stored when any
// input is invalid.
func (s *itemService) RegisterAll(ctx context.Context, inputs []ItemInput) ([]*model.Item, error) {
	logger.Info("Registering items", map[string]interface{}{
		"count": len(inputs),
	})

	for i, in := range inputs {
		if err := in.validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	items := make([]*model.Item, 0, len(inputs))
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		repos := repository.New(tx)
		for _, in := range inputs {
			item, err := repos.Items.Save(ctx, &model.Item{
				Name:        in.Name,
				Price:       in.Price,
				Detail:      in.Detail,
				SellStatus:  in.sellStatus(),
				StockNumber: in.StockNumber,
			})
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to register items", err)
		return nil, err
	}

	logger.Info("Items registered", map[string]interface{}{
		"count": len(items),
	})
	return items, nil
}

func (s *itemService) Update(ctx context.Context, id uint, input ItemInput) (*model.Item, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var item *model.Item
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		found, ok, err := repository.New(tx).Items.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrItemNotFound
		}
		// 변경 내용은 커밋 시 flush 된다
		found.Name = input.Name
		found.Price = input.Price
		found.Detail = input.Detail
		found.StockNumber = input.StockNumber
		found.SellStatus = input.sellStatus()
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Item updated", map[string]interface{}{
		"item_id": item.ID,
	})
	return item, nil
}

func (s *itemService) GetItemByID(ctx context.Context, id uint) (*model.Item, error) {
	var item *model.Item
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		found, ok, err := repository.New(tx).Items.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrItemNotFound
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) SearchByName(ctx context.Context, name string) ([]*model.Item, error) {
	var items []*model.Item
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		var err error
		items, err = repository.New(tx).Items.FindByItemNm(ctx, name)
		return err
	})
	return items, err
}

func (s *itemService) ListCheaperThan(ctx context.Context, price int) ([]*model.Item, error) {
	var items []*model.Item
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		var err error
		items, err = repository.New(tx).Items.FindByPriceLessThan(ctx, price)
		return err
	})
	return items, err
}

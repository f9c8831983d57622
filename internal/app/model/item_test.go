package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_RemoveStock(t *testing.T) {
	tests := []struct {
		name       string
		stock      int
		remove     int
		wantErr    error
		wantStock  int
		wantStatus ItemSellStatus
	}{
		{name: "Partial", stock: 10, remove: 3, wantStock: 7, wantStatus: ItemSell},
		{name: "Exactly all", stock: 10, remove: 10, wantStock: 0, wantStatus: ItemSoldOut},
		{name: "More than stock", stock: 10, remove: 11, wantErr: ErrOutOfStock, wantStock: 10, wantStatus: ItemSell},
		{name: "Zero", stock: 10, remove: 0, wantErr: ErrInvalidQuantity, wantStock: 10, wantStatus: ItemSell},
		{name: "Negative count", stock: 100, remove: -5, wantErr: ErrInvalidQuantity, wantStock: 100, wantStatus: ItemSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &Item{StockNumber: tt.stock, SellStatus: ItemSell}

			err := item.RemoveStock(tt.remove)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantStock, item.StockNumber)
			assert.Equal(t, tt.wantStatus, item.SellStatus)
		})
	}
}

func TestItem_AddStockReopensSoldOutItem(t *testing.T) {
	item := &Item{StockNumber: 1, SellStatus: ItemSell}
	require.NoError(t, item.RemoveStock(1))
	assert.Equal(t, ItemSoldOut, item.SellStatus)

	require.NoError(t, item.AddStock(5))
	assert.Equal(t, 5, item.StockNumber)
	assert.Equal(t, ItemSell, item.SellStatus)
}

func TestItem_AddStockRejectsNonPositiveCount(t *testing.T) {
	item := &Item{StockNumber: 10, SellStatus: ItemSell}

	assert.ErrorIs(t, item.AddStock(0), ErrInvalidQuantity)
	assert.ErrorIs(t, item.AddStock(-3), ErrInvalidQuantity)
	assert.Equal(t, 10, item.StockNumber)
}

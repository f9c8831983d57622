package db

import (
	"testing"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_CreatesTables(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	for _, m := range Models() {
		assert.True(t, testDB.Migrator().HasTable(m), "%T table should exist", m)
	}
	assert.True(t, testDB.Migrator().HasIndex(&model.Member{}, "Email"))
}

func TestTruncateAllTables(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, testDB.Create(&model.Item{Name: "상품", Price: 1000, StockNumber: 1, SellStatus: model.ItemSell}).Error)
	require.NoError(t, TruncateAllTables(testDB))

	var count int64
	require.NoError(t, testDB.Model(&model.Item{}).Count(&count).Error)
	assert.Zero(t, count)
}

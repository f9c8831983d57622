package service

import (
	"context"
	"testing"

	"github.com/ikkim/shopp-backend/internal/db"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServices struct {
	manager *persistence.Manager
	members MemberService
	items   ItemService
	orders  OrderService
}

func setupServiceTest(t *testing.T) *testServices {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	manager := persistence.NewManager(testDB)
	return &testServices{
		manager: manager,
		members: NewMemberService(manager, util.NewPasswordHasher(bcrypt.MinCost)),
		items:   NewItemService(manager),
		orders:  NewOrderService(manager),
	}
}

func (s *testServices) join(t *testing.T, email string) {
	t.Helper()
	_, err := s.members.Join(context.Background(), JoinInput{
		Name:     "민지훈",
		Email:    email,
		Password: "1234",
		Address:  "부산 동래구 어딘가",
	})
	require.NoError(t, err)
}

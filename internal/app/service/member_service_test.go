package service

import (
	"context"
	"testing"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMemberService_Join(t *testing.T) {
	services := setupServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   JoinInput
		wantErr error
	}{
		{
			name:  "Successful join",
			input: JoinInput{Name: "민지훈", Email: "astar5327z@gmail.com", Password: "1234", Address: "부산 동래구 어딘가"},
		},
		{
			name:    "Duplicate email",
			input:   JoinInput{Name: "홍길동", Email: "astar5327z@gmail.com", Password: "5678"},
			wantErr: ErrDuplicateMember,
		},
		{
			name:    "Duplicate email with different case",
			input:   JoinInput{Name: "홍길동", Email: " ASTAR5327Z@gmail.com ", Password: "5678"},
			wantErr: ErrDuplicateMember,
		},
		{
			name:    "Missing password",
			input:   JoinInput{Name: "홍길동", Email: "hong@example.com"},
			wantErr: ErrInvalidMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member, err := services.members.Join(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, member)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, member.ID)
			assert.Equal(t, model.RoleUser, member.Role)
			assert.NotEqual(t, tt.input.Password, member.Password)
		})
	}
}

func TestMemberService_Authenticate(t *testing.T) {
	services := setupServiceTest(t)
	ctx := context.Background()
	services.join(t, "astar5327z@gmail.com")

	member, err := services.members.Authenticate(ctx, "astar5327z@gmail.com", "1234")
	require.NoError(t, err)
	assert.Equal(t, "민지훈", member.Name)

	_, err = services.members.Authenticate(ctx, "astar5327z@gmail.com", "wrong")
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = services.members.Authenticate(ctx, "nobody@example.com", "1234")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(hashedPassword, password string) bool {
	args := m.Called(hashedPassword, password)
	return args.Bool(0)
}

func TestMemberService_Join_StoresHashedPassword(t *testing.T) {
	services := setupServiceTest(t)
	ctx := context.Background()

	hasher := new(MockPasswordHasher)
	hasher.On("Hash", "1234").Return("hashed-1234", nil).Once()
	hasher.On("Verify", "hashed-1234", "1234").Return(true).Once()
	members := NewMemberService(services.manager, hasher)

	member, err := members.Join(ctx, JoinInput{Name: "민지훈", Email: "astar5327z@gmail.com", Password: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "hashed-1234", member.Password)

	_, err = members.Authenticate(ctx, "astar5327z@gmail.com", "1234")
	require.NoError(t, err)
	hasher.AssertExpectations(t)
}

func TestMemberService_Join_HashFailure(t *testing.T) {
	services := setupServiceTest(t)
	ctx := context.Background()

	hasher := new(MockPasswordHasher)
	hasher.On("Hash", mock.Anything).Return("", assert.AnError)
	members := NewMemberService(services.manager, hasher)

	_, err := members.Join(ctx, JoinInput{Name: "민지훈", Email: "astar5327z@gmail.com", Password: "1234"})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = members.GetMemberByEmail(ctx, "astar5327z@gmail.com")
	assert.ErrorIs(t, err, ErrMemberNotFound)
	hasher.AssertExpectations(t)
}

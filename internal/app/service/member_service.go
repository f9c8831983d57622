package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/app/repository"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
)

var (
	ErrDuplicateMember = errors.New("member already exists")
	ErrMemberNotFound  = errors.New("member not found")
	ErrInvalidMember   = errors.New("name, email and password are required")
)

type JoinInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

// PasswordHasher is satisfied by *util.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

type MemberService interface {
	Join(ctx context.Context, input JoinInput) (*model.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*model.Member, error)
	Authenticate(ctx context.Context, email, password string) (*model.Member, error)
}

type memberService struct {
	manager *persistence.Manager
	hasher  PasswordHasher
}

func NewMemberService(manager *persistence.Manager, hasher PasswordHasher) MemberService {
	return &memberService{
		manager: manager,
		hasher:  hasher,
	}
}

func (s *memberService) Join(ctx context.Context, input JoinInput) (*model.Member, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	logger.Info("Attempting member join", map[string]interface{}{
		"email": email,
		"name":  input.Name,
	})

	if strings.TrimSpace(input.Name) == "" || email == "" || input.Password == "" {
		return nil, ErrInvalidMember
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, err
	}

	var member *model.Member
	err = s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		repos := repository.New(tx)

		_, exists, err := repos.Members.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			logger.Warn("Join attempted with existing email", map[string]interface{}{
				"email": email,
			})
			return ErrDuplicateMember
		}

		member, err = repos.Members.Save(ctx, &model.Member{
			Name:     input.Name,
			Email:    email,
			Password: hash,
			Address:  input.Address,
			Role:     model.RoleUser,
		})
		return err
	})
	if err != nil {
		// 동시 가입으로 unique 제약에 걸린 경우
		if errors.Is(err, persistence.ErrConstraintViolation) {
			return nil, ErrDuplicateMember
		}
		return nil, err
	}

	logger.Info("Member joined", map[string]interface{}{
		"member_id": member.ID,
		"email":     member.Email,
	})
	return member, nil
}

func (s *memberService) GetMemberByEmail(ctx context.Context, email string) (*model.Member, error) {
	var member *model.Member
	err := s.manager.WithinTx(ctx, func(tx *persistence.Session) error {
		found, ok, err := repository.New(tx).Members.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return err
		}
		if !ok {
			return ErrMemberNotFound
		}
		member = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// Authenticate returns the member when password matches the stored hash.
func (s *memberService) Authenticate(ctx context.Context, email, password string) (*model.Member, error) {
	member, err := s.GetMemberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(member.Password, password) {
		logger.Warn("Authentication failed", map[string]interface{}{
			"member_id": member.ID,
		})
		return nil, ErrMemberNotFound
	}
	return member, nil
}

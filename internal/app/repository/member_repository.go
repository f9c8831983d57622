package repository

import (
	"context"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"github.com/ikkim/shopp-backend/pkg/logger"
	"gorm.io/gorm"
)

type MemberRepository interface {
	Repository[*model.Member]
	FindByEmail(ctx context.Context, email string) (*model.Member, bool, error)
}

type memberRepository struct {
	*gateway[*model.Member]
}

func NewMemberRepository(s *persistence.Session) MemberRepository {
	return &memberRepository{gateway: newGateway[*model.Member](s, "member")}
}

func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, bool, error) {
	logger.Debug("Finding member by email", map[string]interface{}{
		"email": email,
	})

	members, err := persistence.Query[*model.Member](ctx, r.session, func(db *gorm.DB) *gorm.DB {
		return db.Where("email = ?", email).Limit(1)
	})
	if err != nil {
		logger.Error("Failed to find member by email", err, map[string]interface{}{
			"email": email,
		})
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	return members[0], true, nil
}

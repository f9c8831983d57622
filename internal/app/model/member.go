package model

import (
	"context"
	"time"

	"github.com/ikkim/shopp-backend/internal/persistence"
	"gorm.io/gorm"
)

type Role string // 회원 권한 타입

const (
	RoleUser  Role = "USER"  // 일반 회원
	RoleAdmin Role = "ADMIN" // 관리자
)

type Member struct {
	ID        uint      `gorm:"primarykey" json:"id"`                        // 회원 ID
	Name      string    `gorm:"not null" json:"name"`                        // 이름
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`           // 이메일
	Password  string    `gorm:"not null" json:"-"`                           // 비밀번호 (해시)
	Address   string    `json:"address"`                                     // 주소
	Role      Role      `gorm:"type:varchar(20);default:'USER'" json:"role"` // 권한
	CreatedAt time.Time `json:"created_at"`                                  // 생성 시각
	UpdatedAt time.Time `json:"updated_at"`                                  // 수정 시각
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) GetID() uint {
	return m.ID
}

// Orders loads the orders placed by the member, newest first. The member side
// is read only; an order's owner is set through Order.Member.
func (m *Member) Orders(ctx context.Context, s *persistence.Session) ([]*Order, error) {
	if m.ID == 0 {
		return nil, nil
	}
	return persistence.Query[*Order](ctx, s, func(db *gorm.DB) *gorm.DB {
		return db.Where("member_id = ?", m.ID).Order("order_date DESC").Order("id DESC")
	})
}

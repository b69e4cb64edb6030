package model

import (
	"time"

	"github.com/google/uuid"
)

// Session 服务端会话，令牌中只携带会话ID
type Session struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Role      Role       `json:"role" gorm:"size:20;not null"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null;index"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	IPAddress string     `json:"ipAddress" gorm:"size:50"`
	UserAgent string     `json:"userAgent" gorm:"type:text"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// Actor 发起操作的主体，用于审计
type Actor struct {
	UserID    uuid.UUID
	Role      Role
	IPAddress string
	UserAgent string
}

func (s *Session) Actor() Actor {
	if s == nil {
		return Actor{}
	}
	return Actor{UserID: s.UserID, Role: s.Role, IPAddress: s.IPAddress, UserAgent: s.UserAgent}
}

// RequestMeta 登录请求的来源信息
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role 用户角色
type Role string

const (
	RoleCaretaker Role = "CARETAKER"
	RoleTenant    Role = "TENANT"
)

func (r Role) Valid() bool {
	return r == RoleCaretaker || r == RoleTenant
}

// User 用户模型，只会被停用不会被物理删除
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"size:255;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	Role         Role       `json:"role" gorm:"size:20;not null;index"`
	IsActive     bool       `json:"isActive" gorm:"not null"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserView 对外暴露的用户信息
type UserView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	IsActive bool      `json:"isActive"`
}

func (u *User) View() *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *UserView `json:"user"`
}

// CreateCaretakerRequest 创建管理员请求
type CreateCaretakerRequest struct {
	Name     string `json:"name" yaml:"name" binding:"required"`
	Email    string `json:"email" yaml:"email" binding:"required,email"`
	Password string `json:"password" yaml:"password" binding:"required,min=6"`
}

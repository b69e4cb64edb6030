package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant 租户档案，与一个 TENANT 角色用户一一对应
type Tenant struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID      `json:"userId" gorm:"type:uuid;not null;uniqueIndex"`
	User                *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Phone               string         `json:"phone" gorm:"size:50"`
	NationalID          string         `json:"nationalId" gorm:"-"`
	NationalIDEncrypted string         `json:"-" gorm:"column:national_id_encrypted;type:text"`
	NationalIDNonce     string         `json:"-" gorm:"column:national_id_nonce;size:32"`
	EmergencyContact    string         `json:"emergencyContact" gorm:"size:255"`
	Leases              []Lease        `json:"-" gorm:"foreignKey:TenantID"`
	CreatedAt           time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// OnboardTenantRequest 租户入住请求
type OnboardTenantRequest struct {
	Name             string  `json:"name" binding:"required,max=255"`
	Email            string  `json:"email" binding:"required,email"`
	Password         string  `json:"password" binding:"required,min=6"`
	Phone            string  `json:"phone" binding:"max=50"`
	NationalID       string  `json:"nationalId" binding:"max=64"`
	EmergencyContact string  `json:"emergencyContact" binding:"max=255"`
	UnitID           string  `json:"unitId" binding:"required,uuid"`
	LeaseStartDate   string  `json:"leaseStartDate"`
	DepositAmount    float64 `json:"depositAmount" binding:"gte=0"`
}

// UpdateTenantRequest 编辑租户资料请求，只涉及用户与档案字段
type UpdateTenantRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone" binding:"omitempty,max=50"`
	NationalID       *string `json:"nationalId" binding:"omitempty,max=64"`
	EmergencyContact *string `json:"emergencyContact" binding:"omitempty,max=255"`
}

// TenantFilter 租户列表过滤条件
type TenantFilter struct {
	Query string
}

// TenantView 租户详情，leaseActive/unit/leaseStartDate 由租约推导
type TenantView struct {
	ID               uuid.UUID    `json:"id"`
	User             *UserView    `json:"user"`
	Phone            string       `json:"phone"`
	NationalID       string       `json:"nationalId"`
	EmergencyContact string       `json:"emergencyContact"`
	LeaseActive      bool         `json:"leaseActive"`
	LeaseStartDate   *time.Time   `json:"leaseStartDate,omitempty"`
	Unit             *Unit        `json:"unit,omitempty"`
	Leases           []*LeaseView `json:"leases"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

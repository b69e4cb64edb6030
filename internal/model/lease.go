package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lease 租约，同一房源、同一租户最多各有一份有效租约
type Lease struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID  `json:"tenantId" gorm:"type:uuid;not null;index"`
	Tenant        *Tenant    `json:"-" gorm:"foreignKey:TenantID"`
	UnitID        uuid.UUID  `json:"unitId" gorm:"type:uuid;not null;index"`
	Unit          *Unit      `json:"-" gorm:"foreignKey:UnitID"`
	StartDate     time.Time  `json:"startDate" gorm:"type:date;not null"`
	DepositAmount float64    `json:"depositAmount" gorm:"type:decimal(12,2);not null"`
	Active        bool       `json:"active" gorm:"not null;index"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Lease) TableName() string {
	return "leases"
}

func (l *Lease) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LeaseFilter 租约历史过滤条件
type LeaseFilter struct {
	TenantID *uuid.UUID
	UnitID   *uuid.UUID
	Active   *bool
}

// LeaseView 租约及其房源
type LeaseView struct {
	*Lease
	Unit *Unit `json:"unit,omitempty"`
}

func (l *Lease) View() *LeaseView {
	return &LeaseView{Lease: l, Unit: l.Unit}
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnitStatus 房源状态
type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "AVAILABLE"
	UnitStatusOccupied  UnitStatus = "OCCUPIED"
)

func (s UnitStatus) Valid() bool {
	return s == UnitStatusAvailable || s == UnitStatusOccupied
}

// Unit 房源，(building, unit_number) 唯一
type Unit struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Building    string     `json:"building" gorm:"size:100;not null;uniqueIndex:idx_units_building_number,priority:1"`
	UnitNumber  string     `json:"unitNumber" gorm:"size:50;not null;uniqueIndex:idx_units_building_number,priority:2"`
	Description string     `json:"description" gorm:"type:text"`
	RentAmount  float64    `json:"rentAmount" gorm:"type:decimal(12,2);not null"`
	Status      UnitStatus `json:"status" gorm:"size:20;not null;index"`
	Version     int64      `json:"version" gorm:"not null"`
	Leases      []Lease    `json:"-" gorm:"foreignKey:UnitID"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Unit) TableName() string {
	return "units"
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = UnitStatusAvailable
	}
	return nil
}

// CreateUnitRequest 创建房源请求
type CreateUnitRequest struct {
	Building    string  `json:"building" yaml:"building" binding:"required,max=100"`
	UnitNumber  string  `json:"unitNumber" yaml:"unitNumber" binding:"required,max=50"`
	Description string  `json:"description" yaml:"description"`
	RentAmount  float64 `json:"rentAmount" yaml:"rentAmount" binding:"gte=0"`
}

// UpdateUnitRequest 更新房源请求，未提供的字段保持不变
type UpdateUnitRequest struct {
	Building    *string  `json:"building" binding:"omitempty,max=100"`
	UnitNumber  *string  `json:"unitNumber" binding:"omitempty,max=50"`
	Description *string  `json:"description"`
	RentAmount  *float64 `json:"rentAmount" binding:"omitempty,gte=0"`
}

// UnitFilter 房源列表过滤条件
type UnitFilter struct {
	Building string
	Status   UnitStatus
}

// OccupantView 房源当前住户
type OccupantView struct {
	TenantID  uuid.UUID `json:"tenantId"`
	LeaseID   uuid.UUID `json:"leaseId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	StartDate time.Time `json:"startDate"`
}

// UnitView 房源及其当前住户
type UnitView struct {
	*Unit
	Occupant *OccupantView `json:"occupant"`
}
